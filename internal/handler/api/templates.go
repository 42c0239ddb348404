package api

import "html/template"

// pageData feeds screenerPage.
type pageData struct {
	View     *viewData
	Error    string
	MinPrice string
	MaxPrice string
	Trend    string
	Sort     string
}

type viewData struct {
	RunID       string
	GeneratedAt string
	Interval    string
	Requested   int
	Failed      int
	Total       int
	Rows        []rowData
}

type rowData struct {
	Symbol     string
	ChartURL   string
	Price      string
	EmaFast    string
	EmaSlow    string
	EmaSlowest string
	Trend      string
	Condition  string
}

var screenerPage = template.Must(template.New("screener").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TrendBoard</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 4px 10px; border: 1px solid #ccc; text-align: right; }
td:first-child, th:first-child { text-align: left; }
tr.green { background: #d4f7d4; }
tr.red { background: #f7d4d4; }
.legend span { display: inline-block; padding: 2px 8px; margin-right: 8px; }
.legend .green { background: #d4f7d4; }
.legend .red { background: #f7d4d4; }
.error { color: #a00; }
.meta { color: #666; }
</style>
</head>
<body>
<h1>Futures trend screener</h1>
<form method="post" action="/">
  <label>Min price <input type="text" name="min_price" value="{{.MinPrice}}"></label>
  <label>Max price <input type="text" name="max_price" value="{{.MaxPrice}}"></label>
  <label>Trend
    <select name="trend">
      <option value="" {{if eq .Trend ""}}selected{{end}}>any</option>
      <option value="LONG" {{if eq .Trend "LONG"}}selected{{end}}>LONG</option>
      <option value="SHORT" {{if eq .Trend "SHORT"}}selected{{end}}>SHORT</option>
    </select>
  </label>
  <label>Sort
    <select name="sort">
      <option value="symbol" {{if eq .Sort "symbol"}}selected{{end}}>symbol</option>
      <option value="price" {{if eq .Sort "price"}}selected{{end}}>price</option>
      <option value="trend" {{if eq .Sort "trend"}}selected{{end}}>trend</option>
    </select>
  </label>
  <button type="submit">Filter</button>
</form>
<p class="legend"><span class="green">LONG: EMA 8 above EMA 21</span><span class="red">SHORT: EMA 8 at or below EMA 21</span></p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{with .View}}
<p class="meta">{{.Total}} shown of {{.Requested}} instruments, {{.Failed}} failed. Interval {{.Interval}}, generated {{.GeneratedAt}}, run {{.RunID}}.</p>
<table>
<thead><tr><th>Symbol</th><th>Price</th><th>EMA fast</th><th>EMA slow</th><th>EMA slowest</th><th>Trend</th></tr></thead>
<tbody>
{{range .Rows}}<tr class="{{.Condition}}"><td><a href="{{.ChartURL}}" target="_blank" rel="noopener">{{.Symbol}}</a></td><td>{{.Price}}</td><td>{{.EmaFast}}</td><td>{{.EmaSlow}}</td><td>{{.EmaSlowest}}</td><td>{{.Trend}}</td></tr>
{{end}}</tbody>
</table>
{{end}}
</body>
</html>
`))
