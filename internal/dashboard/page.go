package dashboard

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CryptoFlow Scanner</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="https://unpkg.com/lightweight-charts@4.2.0/dist/lightweight-charts.standalone.production.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #0e1117; color: #fafafa; display: flex; }
aside { width: 300px; padding: 16px; background: #161a23; min-height: 100vh; box-sizing: border-box; }
main { flex: 1; padding: 16px 24px; }
button { background: #ff4b4b; color: #fff; border: 0; padding: 8px 14px; border-radius: 6px; cursor: pointer; width: 100%; }
button:disabled { opacity: .5; }
table { width: 100%; border-collapse: collapse; font-size: 13px; margin-top: 12px; }
td, th { padding: 4px 6px; text-align: right; }
td:first-child, th:first-child { text-align: left; }
tr.row:hover { background: #262b36; cursor: pointer; }
tr.sel { background: #31374a; }
.cards { display: flex; gap: 16px; margin: 12px 0; }
.card { background: #161a23; padding: 10px 16px; border-radius: 8px; min-width: 140px; }
.card b { display: block; font-size: 20px; }
.up { color: #26a69a; } .down { color: #ef5350; } .muted { color: #888; font-size: 12px; }
#chart { height: 460px; } #rsi { height: 140px; margin-top: 8px; }
label { display: block; margin: 6px 0; }
</style>
</head>
<body data-symbol="{{.View.SelectedSymbol}}" data-sma="{{.SMALength}}">
<aside>
  <h3>🚀 CryptoFlow</h3>
  <button id="scan">Scan market</button>
  <div id="scanInfo" class="muted">{{if .View.LastScan}}Last scan {{.View.LastScan.Format "2006-01-02 15:04"}}{{else}}No scan yet{{end}}</div>
  <table>
    <thead><tr><th>Symbol</th><th>Price</th><th>Above SMA {{.SMALength}}</th></tr></thead>
    <tbody id="results">
    {{range .View.Results}}<tr class="row" data-symbol="{{.Symbol}}"><td>{{.Symbol}}</td><td>{{.Price}}</td><td>{{printf "%.2f" .Deviation}}%</td></tr>{{end}}
    </tbody>
  </table>
</aside>
<main>
  <h2 id="title">{{.View.SelectedSymbol}}</h2>
  <div>
    <select id="tf">
      {{$cur := .View.Timeframe}}{{range .View.Timeframes}}<option value="{{.}}"{{if eq . $cur}} selected{{end}}>{{.}}</option>{{end}}
    </select>
    <label><input type="checkbox" id="sma"{{if .View.ShowSMA}} checked{{end}}> SMA 50 / 200</label>
    <label><input type="checkbox" id="rsi-toggle"{{if .View.ShowRSI}} checked{{end}}> RSI 14</label>
  </div>
  <div class="cards">
    <div class="card">Price<b id="price">-</b></div>
    <div class="card">SMA 50<b id="smaVal">-</b></div>
    <div class="card">Distance<b id="dist">-</b></div>
    <div class="card">RSI<b id="rsiVal">-</b></div>
  </div>
  <div id="chart"></div>
  <div id="rsi"></div>
  <h3>Recent alerts</h3>
  <table><tbody id="alerts"></tbody></table>
</main>
<script>
(function () {
  var LWC = window.LightweightCharts;
  var chart = null, rsiChart = null;

  function post(url, body) {
    return fetch(url, { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body || {}) })
      .then(function (r) { return r.json().then(function (j) { if (!r.ok) throw new Error(j.error || r.status); return j; }); });
  }
  function fmt(v, d) { return v === null || v === undefined ? 'n/a' : Number(v).toFixed(d); }
  function row(cells) {
    var tr = document.createElement('tr');
    cells.forEach(function (text) {
      var td = document.createElement('td');
      td.textContent = text;
      tr.appendChild(td);
    });
    return tr;
  }

  function renderResults(rows, selected) {
    var tb = document.getElementById('results');
    tb.replaceChildren();
    rows.forEach(function (r) {
      var tr = row([r.symbol, String(r.price), fmt(r.deviation, 2) + '%']);
      tr.className = 'row' + (r.symbol === selected ? ' sel' : '');
      tr.dataset.symbol = r.symbol;
      tb.appendChild(tr);
    });
  }

  function series(overlay, candles) {
    var out = [];
    overlay.values.forEach(function (v, i) { if (v !== null) out.push({ time: candles[i].time, value: v }); });
    return out;
  }

  function loadChart() {
    fetch('/api/chart').then(function (r) { return r.json(); }).then(function (c) {
      if (c.error) { document.getElementById('title').textContent = c.error; return; }
      document.getElementById('title').textContent = c.symbol + ' · ' + c.timeframe;
      var s = c.summary;
      document.getElementById('price').textContent = fmt(s.last_price, 4);
      document.getElementById('smaVal').textContent = fmt(s.sma, 4);
      var dist = document.getElementById('dist');
      dist.textContent = s.distance === null ? 'n/a' : fmt(s.distance, 2) + '%';
      dist.className = s.distance > 0 ? 'up' : (s.distance < 0 ? 'down' : '');
      document.getElementById('rsiVal').textContent = fmt(s.rsi, 1);

      var el = document.getElementById('chart'), rel = document.getElementById('rsi');
      el.replaceChildren(); rel.replaceChildren();
      var opts = { layout: { background: { color: '#0e1117' }, textColor: '#ddd' }, grid: { vertLines: { color: '#222' }, horzLines: { color: '#222' } } };
      chart = LWC.createChart(el, opts);
      chart.addCandlestickSeries().setData(c.candles);
      var colors = ['#f5c542', '#42a5f5'];
      var rsiOverlay = null;
      c.overlays.forEach(function (o, i) {
        if (o.name.indexOf('RSI') === 0) { rsiOverlay = o; return; }
        chart.addLineSeries({ color: colors[i % colors.length], lineWidth: 1, title: o.name }).setData(series(o, c.candles));
      });
      chart.timeScale().fitContent();
      if (rsiOverlay) {
        rsiChart = LWC.createChart(rel, opts);
        rsiChart.addLineSeries({ color: '#ab47bc', lineWidth: 1, title: 'RSI 14' }).setData(series(rsiOverlay, c.candles));
        rsiChart.timeScale().fitContent();
      }
    });
  }

  function loadAlerts() {
    fetch('/api/alerts?limit=20').then(function (r) { return r.json(); }).then(function (rows) {
      var tb = document.getElementById('alerts');
      tb.replaceChildren();
      (rows || []).forEach(function (a) {
        tb.appendChild(row([a.symbol, new Date(a.sent_at).toLocaleString(), fmt(a.deviation, 2) + '%']));
      });
    });
  }

  document.getElementById('scan').onclick = function () {
    var b = this; b.disabled = true; b.textContent = 'Scanning...';
    post('/api/scan').then(function (res) {
      document.getElementById('scanInfo').textContent = res.results.length + ' of ' + res.symbols + ' above SMA (' + res.duration.toFixed(0) + 's)';
      renderResults(res.results, document.body.dataset.symbol);
    }).catch(function (e) { document.getElementById('scanInfo').textContent = 'Scan failed: ' + e.message; })
      .finally(function () { b.disabled = false; b.textContent = 'Scan market'; });
  };
  document.getElementById('results').onclick = function (ev) {
    var tr = ev.target.closest('tr');
    if (!tr) return;
    post('/api/select', { symbol: tr.dataset.symbol }).then(function (v) {
      document.body.dataset.symbol = v.selected_symbol;
      renderResults(v.results, v.selected_symbol);
      loadChart();
    });
  };
  function settings() {
    post('/api/settings', {
      timeframe: document.getElementById('tf').value,
      show_sma: document.getElementById('sma').checked,
      show_rsi: document.getElementById('rsi-toggle').checked
    }).then(loadChart);
  }
  ['tf', 'sma', 'rsi-toggle'].forEach(function (id) { document.getElementById(id).onchange = settings; });

  loadChart();
  loadAlerts();
})();
</script>
</body>
</html>
`
