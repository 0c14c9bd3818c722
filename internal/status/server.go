package status

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// refreshSeconds is how often the page reloads while not yet connected.
const refreshSeconds = 3

const qrImageSize = 256

var pageTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>bot-provas-medicina</title>
{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
<style>body { font-family: sans-serif; text-align: center; padding-top: 48px; }</style>
</head>
<body>
{{if .Connected}}<h1>&#9989; Conectado ao WhatsApp</h1>
<p>O bot está pronto para receber mensagens.</p>
{{else if .QR}}<h1>Escaneie o QR code no WhatsApp</h1>
<img src="data:image/png;base64,{{.QR}}" alt="QR code" width="{{.Size}}" height="{{.Size}}">
<p>Aguardando leitura do código...</p>
{{else}}<h1>Gerando QR code...</h1>
<p>A página atualiza sozinha em alguns segundos.</p>
{{end}}</body>
</html>
`))

type pageData struct {
	Connected bool
	QR        string
	Size      int
	Refresh   int
}

// Handler serves the connection-status page.
type Handler struct {
	state *State
	log   *slog.Logger
}

func NewHandler(state *State, log *slog.Logger) (*Handler, error) {
	if state == nil {
		return nil, errors.New("status: state must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{state: state, log: log}, nil
}

// HandleStatus renders one of three branches: waiting for a code, QR pairing,
// or connected. While not connected the page auto-refreshes.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	phase, qr := h.state.Snapshot()

	var data pageData
	switch phase {
	case PhaseConnected:
		data.Connected = true
	case PhasePairing:
		png, err := qrcode.Encode(qr, qrcode.Medium, qrImageSize)
		if err != nil {
			h.log.Error("qr encode failed", "err", err)
			http.Error(w, "qr encoding error", http.StatusInternalServerError)
			return
		}
		data.QR = base64.StdEncoding.EncodeToString(png)
		data.Size = qrImageSize
		data.Refresh = refreshSeconds
	default:
		data.Refresh = refreshSeconds
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Error("render status page failed", "err", err)
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.HandleStatus)
}
