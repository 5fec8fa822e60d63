package web

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"mmss": func(d time.Duration) string {
		secs := int(d / time.Second)
		return fmt.Sprintf("%d:%02d", secs/60, secs%60)
	},
	"join": func(ss []string) string {
		return strings.Join(ss, ", ")
	},
	"add1": func(i int) int {
		return i + 1
	},
}).Parse(pagesHTML))

const pagesHTML = `
{{define "style"}}
<style>
    body {
        font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
        margin: 0;
        min-height: 100vh;
        background: linear-gradient(135deg, #1DB954 0%, #191414 100%);
        color: white;
    }
    .container {
        max-width: 720px;
        margin: 0 auto;
        padding: 40px 20px;
    }
    .card {
        background: rgba(0, 0, 0, 0.5);
        border-radius: 16px;
        padding: 24px;
        margin-bottom: 16px;
    }
    h1 { margin-top: 0; }
    a { color: #1ed760; }
    table { width: 100%; border-collapse: collapse; }
    td, th { padding: 6px 8px; text-align: left; }
    tr:nth-child(even) { background: rgba(255, 255, 255, 0.05); }
    .muted { opacity: 0.7; }
    .right { text-align: right; }
    button {
        background: #1ed760;
        color: #191414;
        border: none;
        border-radius: 20px;
        padding: 8px 20px;
        font-weight: 600;
        cursor: pointer;
    }
    input, select {
        border-radius: 6px;
        border: none;
        padding: 6px;
    }
    form.inline { display: inline; }
</style>
{{end}}

{{define "home"}}
<!DOCTYPE html>
<html>
<head><title>minutemix</title>{{template "style"}}</head>
<body>
<div class="container">
    <div class="card">
        <h1>minutemix</h1>
        <p>Build a play queue that fits the minutes you have.</p>
        {{if .LoggedIn}}
        <p><a href="/playlists">Browse your playlists</a></p>
        <form class="inline" method="post" action="/logout"><button type="submit">Log out</button></form>
        {{else}}
        <p><a href="/login"><button type="button">Connect Spotify</button></a></p>
        {{end}}
    </div>
</div>
</body>
</html>
{{end}}

{{define "playlists"}}
<!DOCTYPE html>
<html>
<head><title>minutemix - Playlists</title>{{template "style"}}</head>
<body>
<div class="container">
    <div class="card">
        <h1>Playlists</h1>
        {{if .User}}<p class="muted">Logged in as {{.User}}</p>{{end}}
        {{if not .Playlists}}<p>No playlists found on this account.</p>{{end}}
    </div>
    {{range .Playlists}}
    <div class="card">
        <h2>{{.Name}}</h2>
        <p class="muted">{{.Owner}} · {{.TrackTotal}} tracks{{if .URL}} · <a href="{{.URL}}">open in Spotify</a>{{end}}</p>
        <form method="post" action="/queue">
            <input type="hidden" name="playlist_id" value="{{.ID}}">
            <input type="hidden" name="playlist_name" value="{{.Name}}">
            <label>Mode
                <select name="mode">
                    <option value="timedfit" selected>Timed fit</option>
                    <option value="shuffle">Shuffle</option>
                </select>
            </label>
            <label>Minutes <input type="number" name="minutes" min="1" max="1440" value="45"></label>
            {{if $.Presets}}
            <label>Preset
                <select name="preset">
                    <option value="">custom</option>
                    {{range $.Presets}}<option value="{{.}}">{{.}}</option>{{end}}
                </select>
            </label>
            {{end}}
            <button type="submit">Build queue</button>
        </form>
    </div>
    {{end}}
    <div class="card">
        <form class="inline" method="post" action="/logout"><button type="submit">Log out</button></form>
    </div>
</div>
</body>
</html>
{{end}}

{{define "result"}}
<!DOCTYPE html>
<html>
<head><title>minutemix - Queue</title>{{template "style"}}</head>
<body>
<div class="container">
    <div class="card">
        <h1>{{.Playlist}}</h1>
        <p class="muted">{{.Mode}} · {{len .Tracks}} tracks · {{.Minutes}}m {{.Seconds}}s{{if .Trials}} · best of {{.Trials}} rounds{{end}}</p>
        <table>
            <tr><th>#</th><th>Track</th><th>Artists</th><th>Album</th><th class="right">Length</th></tr>
            {{range $i, $t := .Tracks}}
            <tr>
                <td>{{add1 $i}}</td>
                <td>{{if $t.URL}}<a href="{{$t.URL}}">{{$t.Name}}</a>{{else}}{{$t.Name}}{{end}}</td>
                <td>{{join $t.Artists}}</td>
                <td>{{$t.Album}}</td>
                <td class="right">{{mmss $t.Duration}}</td>
            </tr>
            {{end}}
        </table>
    </div>
    <div class="card">
        <form class="inline" method="post" action="/play">
            {{range .URIs}}<input type="hidden" name="uri" value="{{.}}">{{end}}
            <button type="submit">Play on Spotify</button>
        </form>
        <a href="/playlists">Back to playlists</a>
    </div>
</div>
</body>
</html>
{{end}}

{{define "message"}}
<!DOCTYPE html>
<html>
<head><title>minutemix</title>{{template "style"}}</head>
<body>
<div class="container">
    <div class="card">
        <h1>{{.Title}}</h1>
        <p>{{.Detail}}</p>
        <p><a href="/playlists">Back to playlists</a></p>
    </div>
</div>
</body>
</html>
{{end}}
`
