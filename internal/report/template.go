package report

// ReportTemplate is the HTML template for the research report. Sections are
// laid out in a fixed order and a section missing from the analysis is
// skipped entirely.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #000000;
    --card: #000717;
    --card-alt: #000007;
    --darkest: #01040f;
    --text: #ffffff;
    --muted: #94a3b8;
    --border: #1e293b;
    --accent: #3b82f6;
    --green: #4ade80;
    --yellow: #facc15;
    --red: #f87171;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1100px;
    margin: 0 auto;
    padding: 24px;
  }
  h1 { font-size: 1.6rem; font-weight: 700; }
  h2 { font-size: 1.2rem; font-weight: 600; margin-bottom: 16px; }
  h3 { font-size: 0.95rem; font-weight: 500; color: #cbd5e1; margin-bottom: 8px; }
  a { color: var(--accent); text-decoration: none; }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { display: flex; justify-content: space-between; align-items: flex-end; border-bottom: 1px solid var(--border); padding-bottom: 12px; margin-bottom: 20px; }
  .card { background: var(--card); border: 1px solid var(--border); border-radius: 12px; padding: 24px; margin-bottom: 24px; }
  .card.alt { background: var(--card-alt); }
  .overview { display: grid; grid-template-columns: 7fr 5fr; gap: 24px; }
  .company-head { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 12px; }
  .company-head .meta span { margin-right: 16px; color: var(--muted); }
  .company-head .meta .symbol { font-family: monospace; font-size: 1.1rem; }
  .price { font-size: 1.9rem; font-weight: 700; text-align: right; }
  .up { color: var(--green); }
  .down { color: var(--red); }
  .details { display: grid; grid-template-columns: 1fr 1fr; gap: 2px 24px; border-top: 1px solid var(--border); padding-top: 12px; margin-top: 12px; font-size: 0.75rem; }
  .details .label { color: #64748b; margin-right: 6px; }
  .metrics .row { display: flex; justify-content: space-between; padding: 4px 0; border-bottom: 1px solid rgba(30,41,59,0.3); font-size: 0.8rem; }
  .metrics .row:last-child { border-bottom: none; }
  .metrics .label { color: var(--muted); }
  .tiles { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; }
  .tile { background: var(--darkest); border: 1px solid var(--border); border-radius: 8px; padding: 16px; }
  .tile .label { font-size: 0.85rem; color: var(--muted); }
  .tile .value { font-size: 1.1rem; font-weight: 600; }
  .rating-buy { color: var(--green); border-color: rgba(74,222,128,0.2); background: rgba(74,222,128,0.1); }
  .rating-hold { color: var(--yellow); border-color: rgba(250,204,21,0.2); background: rgba(250,204,21,0.1); }
  .rating-sell { color: var(--red); border-color: rgba(248,113,113,0.2); background: rgba(248,113,113,0.1); }
  .confidence-high { color: var(--green); }
  .confidence-medium { color: var(--yellow); }
  .confidence-low { color: var(--red); }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; padding: 10px 14px; color: #cbd5e1; font-weight: 500; border-bottom: 1px solid var(--border); }
  td { padding: 10px 14px; border-bottom: 1px solid #0f172a; }
  .table-wrap { overflow-x: auto; }
  .para { background: var(--darkest); border-radius: 8px; padding: 16px; margin-bottom: 16px; }
  .columns { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
  ul { list-style: none; }
  li { padding: 4px 0 4px 22px; position: relative; }
  .support li::before { content: "✓"; color: var(--green); position: absolute; left: 0; }
  .risks li::before { content: "!"; color: var(--red); position: absolute; left: 4px; font-weight: 700; }
  .summary li::before { content: ""; width: 8px; height: 8px; border-radius: 50%; background: var(--accent); position: absolute; left: 0; top: 12px; }
  .verdict { margin-top: 16px; padding: 16px; background: var(--darkest); border: 1px solid var(--border); border-radius: 8px; }
  .final-call { margin-top: 16px; padding: 16px; background: rgba(59,130,246,0.2); border: 1px solid rgba(59,130,246,0.3); border-radius: 8px; }
  .final-call h3 { color: var(--accent); }
  .headlines li { padding-left: 0; }
  .disclaimer { border-top: 1px solid var(--border); margin-top: 32px; padding-top: 12px; color: #64748b; font-size: 0.75rem; }
  @media (max-width: 800px) { .overview, .columns { grid-template-columns: 1fr; } }
  @media print { body { background: #fff; color: #000; } .card { break-inside: avoid; } }
</style>
</head>
<body>

<div class="header">
  <div>
    <h1>{{.Title}}</h1>
    <div class="muted">Generated {{.Timestamp}}{{with .Model}} · Model: {{.}}{{end}}</div>
  </div>
</div>

{{with .Overview}}
<div class="overview" id="company">
  <div class="card alt">
    <div class="company-head">
      <div>
        <h2>{{.Name}}</h2>
        <div class="meta"><span class="symbol">{{.Symbol}}</span><span>{{.Exchange}}</span><span>{{.Sector}}</span></div>
      </div>
      {{if .Price}}
      <div>
        <div class="price">{{.Price}}</div>
        <div class="{{if .Up}}up{{else}}down{{end}}" style="text-align:right">{{.Change}}</div>
      </div>
      {{end}}
    </div>
    <p class="description">{{.Summary}}</p>
    <div class="details">
      <div><span class="label">CEO:</span>{{.CEO}}</div>
      <div><span class="label">Location:</span>{{.Location}}</div>
      <div><span class="label">Employees:</span>{{.Employees}}</div>
      <div><span class="label">Industry:</span>{{.Industry}}</div>
      <div><span class="label">IPO Date:</span>{{.IPODate}}</div>
      <div><span class="label">Website:</span>{{if .Website}}<a href="{{.Website}}" target="_blank" rel="noopener noreferrer">{{.WebsiteLabel}}</a>{{else}}{{.WebsiteLabel}}{{end}}</div>
    </div>
  </div>
  <div class="card alt metrics">
    {{range $.Metrics}}<div class="row"><span class="label">{{.Label}}</span><span>{{.Value}}</span></div>
    {{end}}
  </div>
</div>
{{end}}

{{if .Chart}}
<div class="card" id="chart">{{.Chart}}</div>
{{end}}

{{if .Trend}}
<div class="card" id="financials">{{.Trend}}</div>
{{end}}

{{with .Report}}
{{with .Snapshot}}
<div class="card" id="snapshot">
  <h2>{{heading 1}}</h2>
  <div class="tiles">
    {{with .Rating}}<div class="tile {{ratingClass .}}"><div class="label">Rating</div><div class="value">{{str .}}</div></div>{{end}}
    {{with .Confidence}}<div class="tile"><div class="label">Confidence</div><div class="value {{confidenceClass .}}">{{str .}}</div></div>{{end}}
    {{with .TargetPrice}}<div class="tile"><div class="label">Target Price</div><div class="value">{{str .}}</div></div>{{end}}
    {{with .ImpliedUpside}}<div class="tile"><div class="label">Upside Estimate</div><div class="value up">{{str .}}</div></div>{{end}}
    {{with .MarketCap}}<div class="tile"><div class="label">Market Cap</div><div class="value">{{str .}}</div></div>{{end}}
    {{with .SharePrice}}<div class="tile"><div class="label">Share Price</div><div class="value">{{str .}}</div></div>{{end}}
  </div>
</div>
{{end}}

{{with .KeyMetrics}}
<div class="card" id="key-metrics">
  <h2>{{heading 2}}</h2>
  {{template "table" .}}
</div>
{{end}}

{{with .FundamentalDrivers}}
<div class="card" id="fundamental-drivers">
  <h2>{{heading 3}}</h2>
  {{with .GrowthEngines}}<h3>Growth Engines</h3><p class="para">{{str .}}</p>{{end}}
  {{with .CostStructure}}<h3>Cost Structure</h3><p class="para">{{str .}}</p>{{end}}
  {{with .CapitalAllocation}}<h3>Capital Allocation</h3><p class="para">{{str .}}</p>{{end}}
</div>
{{end}}

{{with .ThesisAssessment}}
<div class="card" id="thesis-assessment">
  <h2>{{heading 4}}</h2>
  <div class="columns">
    {{with .SupportingPoints}}<div><h3 class="up">Supporting Points</h3><ul class="support">{{range .}}<li>{{.}}</li>{{end}}</ul></div>{{end}}
    {{with .Risks}}<div><h3 class="down">Risks</h3><ul class="risks">{{range .}}<li>{{.}}</li>{{end}}</ul></div>{{end}}
  </div>
  {{with .NetVerdict}}<div class="verdict"><h3>Net Verdict</h3><p>{{str .}}</p></div>{{end}}
</div>
{{end}}

{{with .MacroSector}}
<div class="card" id="macro-sector">
  <h2>{{heading 5}}</h2>
  {{with .SectorCycle}}<h3>Sector Cycle Position</h3><p class="para">{{str .}}</p>{{end}}
  {{with .MacroSensitivities}}<h3>Macro Sensitivities</h3><p class="para">{{str .}}</p>{{end}}
  {{with .CompetitiveMoat}}<h3>Competitive Moat</h3><p class="para">{{str .}}</p>{{end}}
</div>
{{end}}

{{with .CatalystMap}}
<div class="card" id="catalyst-map">
  <h2>{{heading 6}}</h2>
  {{template "table" .}}
</div>
{{end}}

{{with .ScenarioAnalysis}}
<div class="card" id="scenario-analysis">
  <h2>{{heading 7}}</h2>
  {{template "table" .}}
</div>
{{end}}

{{with .InvestmentSummary}}
<div class="card" id="investment-summary">
  <h2>{{heading 8}}</h2>
  {{with .Bullets}}<ul class="summary">{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{with .FinalCall}}<div class="final-call"><h3>Final Call</h3><p>{{str .}}</p></div>{{end}}
</div>
{{end}}
{{end}}

{{with .Headlines}}
<div class="card" id="headlines">
  <h2>Headlines</h2>
  <ul class="headlines">
    {{range .}}<li><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a> <span class="muted">{{.Source}} · {{.PublishedAt.Format "Jan 2, 2006"}}</span></li>
    {{end}}
  </ul>
</div>
{{end}}

<div class="disclaimer">{{.Disclaimer}}</div>
</body>
</html>
{{define "table"}}<div class="table-wrap"><table>
  <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table></div>{{end}}`
