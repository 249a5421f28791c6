package server

import "html/template"

type statusTemplateData struct {
	Version      string
	Port         string
	State        string
	KeyCount     int
	EventCount   int
	GarbageCount int
	Log          string
	CSRFField    template.HTML
}

const templateString = `
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
  <title>serkeyd status</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", "Roboto", "Helvetica Neue", Arial, sans-serif;
    }

    h1 {
      font-size: 36px;
    }

    p {
      color: #858585;
    }

    #container {
      width: 100%;
    }

    .item {
      border: 1px solid lightgray;
      border-radius: 4px;
      min-width: 320px;
      max-width: 500px;
      min-height: 100px;
      margin: 20px auto;
      position: relative;
    }

    .item h3 {
      left: 20px;
      position: absolute;
    }

    .item p {
      top: 50px;
      left: -5px;
      position: relative;
      font-size: 11px;
    }

    .item .state {
      top: 20px;
      right: 20px;
      position: absolute;
    }

    .inner-container {
      max-width: 1024px;
      margin: 0 auto;
      text-align: center;
      border-radius: 4px;
    }

    .badge {
      display: inline-block;
      padding: 6px 10px 6px 10px;
      border: 1px solid #01B757;
      border-radius: 4px;
      color: #01B757;
    }

    .heading {
      margin-bottom: 40px;
    }

    .space-top {
      margin-top: 34px;
    }

    .btn-primary {
      display: inline-block;
      padding: 10px 40px 10px 40px;
      background-color: #01B757;
      color: white;
      border-radius: 4px;
    }

    .btn-primary:hover {
      background-color: #00A24C;
    }

    textarea{
      max-width: 700px;
    }
  </style>
</head>

<body>
  <div id="container">
    <div class="inner-container">
      <div class="heading">
        <h1>serkeyd status</h1>
        <span class="badge">Version: {{.Version}}</span>
      </div>

      <div class="item">
        <h3>{{.Port}}</h3>
        <span class="state">State: {{.State}}</span>
        <p>Configured keys: {{.KeyCount}} &middot;
           Events: {{.EventCount}} &middot;
           Garbage bytes: {{.GarbageCount}}</p>
      </div>

      <div class="space-top">
        <p>Console Log</p>
        <textarea rows="25" cols="150" id="log">
{{.Log}}
        </textarea>
        <p>
          <form action="/status/log.gz" method="post">
            {{.CSRFField}}
            <input type="submit" value="Download detailed log">
          </form>
        </p>
      </div>

      <div class="space-top">
        <p>The page does not refresh itself</p>
        <a href="#" onClick="location.href=location.href">
          <div class="btn-primary">Refresh page</div>
        </a>
      </div>
    </div>
  </div>
</body>
</html>
`

var statusTemplate = template.Must(template.New("status").Parse(templateString))
