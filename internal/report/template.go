package report

// ReportTemplate is the HTML template for the property report.
// Charts are inlined as SVG, so the output is one self-contained file.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #fbfbf9;
    --ink: #1f2428;
    --muted: #707a83;
    --line: #e3e6e9;
    --brand: #0f766e;
    --good: #15803d;
    --bad: #b91c1c;
    --panel: #f1f5f4;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, 'Segoe UI', 'Hiragino Kaku Gothic ProN', Meiryo, sans-serif;
    color: var(--ink);
    background: var(--bg);
    line-height: 1.55;
    max-width: 880px;
    margin: 0 auto;
    padding: 24px 20px;
  }
  h1 { font-size: 1.45rem; font-weight: 650; margin-bottom: 2px; }
  h2 {
    font-size: 1.15rem;
    font-weight: 650;
    margin: 26px 0 10px;
    padding-left: 10px;
    border-left: 4px solid var(--brand);
  }
  h3 { font-size: 0.98rem; font-weight: 650; margin: 14px 0 6px; }
  p { margin: 5px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .positive { color: var(--good); }
  .negative { color: var(--bad); }

  .masthead {
    display: flex;
    justify-content: space-between;
    align-items: flex-end;
    border-bottom: 1px solid var(--line);
    padding-bottom: 14px;
  }
  .masthead .stamp { text-align: right; }
  .prop-badge {
    display: inline-block;
    background: var(--brand);
    color: #fff;
    padding: 2px 10px;
    border-radius: 3px;
    font-size: 1.05rem;
    font-weight: 700;
    margin-right: 6px;
  }

  .purchase-strip {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(150px, 1fr));
    gap: 1px;
    background: var(--line);
    border: 1px solid var(--line);
    border-radius: 6px;
    overflow: hidden;
    margin-top: 14px;
  }
  .fact { background: var(--panel); padding: 9px 12px; }
  .fact .label { font-size: 0.7rem; letter-spacing: 0.04em; text-transform: uppercase; color: var(--muted); }
  .fact .value { font-size: 0.98rem; font-weight: 600; }

  .outcome-banner {
    padding: 14px 18px;
    border-radius: 6px;
    margin: 10px 0 14px;
  }
  .outcome-banner.positive { background: #ecfdf3; border: 1px solid #bbe7cb; }
  .outcome-banner.negative { background: #fdf1f1; border: 1px solid #efc5c5; }
  .outcome-word { font-size: 1.35rem; font-weight: 750; }
  .outcome-banner.positive .outcome-word { color: var(--good); }
  .outcome-banner.negative .outcome-word { color: var(--bad); }

  .headline-numbers { display: grid; grid-template-columns: repeat(4, 1fr); gap: 10px; margin: 10px 0; }
  .stat { border: 1px solid var(--line); border-radius: 6px; padding: 10px; text-align: center; background: #fff; }
  .stat .label { font-size: 0.7rem; letter-spacing: 0.04em; text-transform: uppercase; color: var(--muted); }
  .stat .value { font-size: 1.05rem; font-weight: 650; }

  .figure-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(190px, 1fr));
    gap: 8px;
    margin: 8px 0 14px;
  }
  .figure {
    display: flex;
    justify-content: space-between;
    gap: 10px;
    background: var(--panel);
    border-radius: 5px;
    padding: 7px 11px;
  }
  .figure .label { color: var(--muted); font-size: 0.84rem; }
  .figure .value { font-weight: 600; white-space: nowrap; }

  table { width: 100%; border-collapse: collapse; margin: 6px 0 14px; font-size: 0.88rem; }
  th {
    text-align: left;
    padding: 7px 9px;
    border-bottom: 2px solid var(--brand);
    font-size: 0.76rem;
    letter-spacing: 0.04em;
    text-transform: uppercase;
    color: var(--muted);
  }
  td { padding: 7px 9px; border-bottom: 1px solid var(--line); }
  tbody tr:nth-child(even) td { background: #f7f9f8; }

  .mood-chip {
    display: inline-block;
    padding: 1px 9px;
    border-radius: 10px;
    font-size: 0.78rem;
    font-weight: 650;
  }
  .mood-chip.hot { background: #ecfdf3; color: var(--good); }
  .mood-chip.warm { background: #f0fdf4; color: #22a05a; }
  .mood-chip.neutral { background: #eef1f3; color: var(--muted); }
  .mood-chip.cooling { background: #fefce8; color: #a16207; }
  .mood-chip.cold { background: #fdf1f1; color: var(--bad); }

  .chart-block { margin: 10px 0; overflow-x: auto; }
  .chart-block svg { max-width: 100%; height: auto; }

  .section { margin: 18px 0; }

  .colophon {
    margin-top: 34px;
    padding-top: 10px;
    border-top: 1px solid var(--line);
    font-size: 0.78rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 8px; }
    .section { page-break-inside: avoid; }
    .chart-block { overflow: visible; }
  }
</style>
</head>
<body>

<div class="masthead">
  <div>
    <h1><span class="prop-badge">{{.PropertyName}}</span> Investment Report</h1>
    <p class="muted">Rental property · {{.LoanTerm}} loan · {{.Horizon}}-year outlook</p>
  </div>
  <div class="stamp">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}}</p>
  </div>
</div>

{{if .ShowSummary}}
<div class="purchase-strip">
  <div class="fact"><div class="label">Price</div><div class="value">{{.Price}}</div></div>
  <div class="fact"><div class="label">Rent / Mo</div><div class="value">{{.Rent}}</div></div>
  <div class="fact"><div class="label">Gross Yield</div><div class="value">{{.GrossYield}}</div></div>
  <div class="fact"><div class="label">Net Yield</div><div class="value">{{.NetYield}}</div></div>
  <div class="fact"><div class="label">Renovation</div><div class="value">{{.RenovationCost}}</div></div>
  <div class="fact"><div class="label">Value After Works</div><div class="value">{{.PostRenoValue}}</div></div>
  <div class="fact"><div class="label">Costs / Mo</div><div class="value">{{.RecurringCosts}}</div></div>
  <div class="fact"><div class="label">Initial Investment</div><div class="value">{{.TotalInvestment}}</div></div>
</div>
{{end}}

{{if .ShowMetrics}}
<div class="section">
  <h2>{{.Horizon}}-Year Outlook</h2>
  <div class="outcome-banner {{.VerdictClass}}">
    <div class="outcome-word">{{.VerdictLabel}}</div>
    <div class="muted">Wealth: {{.FinalWealth}} · Benchmark: {{.FinalBenchmark}}</div>
  </div>

  <div class="headline-numbers">
    <div class="stat"><div class="label">ROI</div><div class="value">{{.FinalROI}}</div></div>
    <div class="stat"><div class="label">Equity</div><div class="value positive">{{.FinalEquity}}</div></div>
    <div class="stat"><div class="label">Profit</div><div class="value">{{.FinalProfit}}</div></div>
    <div class="stat"><div class="label">Break-Even</div><div class="value">{{.BreakEven}}</div></div>
  </div>

  <h3>Key Figures</h3>
  <div class="figure-grid">
    <div class="figure"><span class="label">Cash-on-Cash (Y1)</span><span class="value">{{.CashOnCash}}</span></div>
    <div class="figure"><span class="label">Equity CAGR</span><span class="value">{{.EquityCAGR}}</span></div>
    <div class="figure"><span class="label">Monthly Cashflow</span><span class="value {{.CashflowClass}}">{{.MonthlyCashflow}}</span></div>
  </div>
</div>
{{end}}

{{if .ShowFinancing}}
<div class="section">
  <h2>Financing</h2>
  <div class="figure-grid">
    <div class="figure"><span class="label">Down Payment</span><span class="value">{{.DownPayment}} ({{.DownPaymentPct}})</span></div>
    <div class="figure"><span class="label">Loan Principal</span><span class="value">{{.LoanPrincipal}}</span></div>
    <div class="figure"><span class="label">Interest Rate</span><span class="value">{{.InterestRate}}</span></div>
    <div class="figure"><span class="label">Term</span><span class="value">{{.LoanTerm}}</span></div>
    <div class="figure"><span class="label">Monthly Payment</span><span class="value">{{.MonthlyPayment}}</span></div>
    <div class="figure"><span class="label">Monthly Cashflow</span><span class="value {{.CashflowClass}}">{{.MonthlyCashflow}}</span></div>
    <div class="figure"><span class="label">Transfer Tax</span><span class="value">{{.TransferTax}}</span></div>
    <div class="figure"><span class="label">Legal Fees</span><span class="value">{{.LegalFee}}</span></div>
  </div>
</div>
{{end}}

{{if .ShowCharts}}
<div class="section">
  <h2>Wealth Projection</h2>
  <div class="chart-block">{{.WealthChart}}</div>
  <div class="chart-block">{{.CashflowChart}}</div>
</div>
{{end}}

{{if .ShowProjection}}
<div class="section">
  <h2>Year-by-Year Projection</h2>
  <table>
    <thead><tr><th>Year</th><th>Value</th><th>Loan</th><th>Equity</th><th>Cum. Cashflow</th><th>Profit</th><th>ROI</th></tr></thead>
    <tbody>
    {{range .ProjectionRows}}
    <tr>
      <td>{{.Year}}</td>
      <td>{{.Value}}</td>
      <td>{{.Loan}}</td>
      <td>{{.Equity}}</td>
      <td>{{.CumCashflow}}</td>
      <td class="{{.ProfitClass}}">{{.Profit}}</td>
      <td class="{{.ProfitClass}}">{{.ROI}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

{{if .ShowMarket}}
<div class="section">
  <h2>Market Context</h2>
  {{if .PulseMood}}
  <p>Market pulse: <span class="mood-chip {{.PulseClass}}">{{.PulseMood}}</span> <span class="muted">score {{.PulseScore}}</span></p>
  {{end}}

  {{if .HeadlineRows}}
  <table>
    <thead><tr><th>Headline</th><th>Source</th><th>Date</th><th>Tone</th></tr></thead>
    <tbody>
    {{range .HeadlineRows}}
    <tr>
      <td>{{.Title}}</td>
      <td>{{.Source}}</td>
      <td>{{.Date}}</td>
      <td><span class="mood-chip {{.Tone}}">{{.Score}}</span></td>
    </tr>
    {{end}}
    </tbody>
  </table>
  {{end}}

  {{if .RateRows}}
  <h3>Current Mortgage Rates</h3>
  <table>
    <thead><tr><th>Lender</th><th>Product</th><th>Rate</th><th>Term</th></tr></thead>
    <tbody>
    {{range .RateRows}}
    <tr><td>{{.Lender}}</td><td>{{.Product}}</td><td>{{.Rate}}</td><td>{{.Term}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
</div>
{{end}}

<div class="colophon">
  <p><strong>Disclaimer:</strong> This report is generated by Propfolio for planning purposes only.
  Projections assume fixed rates, full occupancy and no extraordinary maintenance, and do not constitute financial advice.
  Always verify loan terms with your lender.</p>
  <p>Propfolio · Generated on {{.GeneratedAt}}</p>
</div>

</body>
</html>`
