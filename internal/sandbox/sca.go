package sandbox

import (
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

var scaPage = template.Must(template.New("sca").Parse(`<!doctype html>
<html>
<head><title>Sandbox bank authorisation</title></head>
<body>
<h1>Authorise {{.Kind}}</h1>
<p>Reference: <code>{{.ID}}</code></p>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
{{if .Done}}
<p>This authorisation is already {{.Status}}.</p>
{{else}}
<form method="post">
<label>TAN <input name="tan" inputmode="numeric" autocomplete="one-time-code"></label>
<button name="action" value="approve">Approve</button>
<button name="action" value="deny">Deny</button>
</form>
{{end}}
</body>
</html>
`))

type scaView struct {
	Kind   string
	ID     string
	Status string
	Done   bool
	Error  string
}

func renderSca(w http.ResponseWriter, status int, v scaView) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = scaPage.Execute(w, v)
}

func (b *Bank) handleScaPage(w http.ResponseWriter, r *http.Request) {
	kind, id := r.PathValue("kind"), r.PathValue("id")
	sca := b.lookupAuthorisation(kind, id, "")
	if sca == nil {
		b.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	v := scaView{Kind: kind, ID: id, Status: sca.status, Done: sca.status == ScaFinalised || sca.status == ScaFailed}
	b.mu.Unlock()
	renderSca(w, http.StatusOK, v)
}

// handleScaSubmit completes SCA from the browser and sends it back to the
// redirect URI the TPP registered.
func (b *Bank) handleScaSubmit(w http.ResponseWriter, r *http.Request) {
	kind, id := r.PathValue("kind"), r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	action, tan := r.PostFormValue("action"), r.PostFormValue("tan")

	sca := b.lookupAuthorisation(kind, id, "")
	if sca == nil {
		b.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	if sca.status == ScaFinalised || sca.status == ScaFailed {
		v := scaView{Kind: kind, ID: id, Status: sca.status, Done: true}
		b.mu.Unlock()
		renderSca(w, http.StatusConflict, v)
		return
	}

	switch {
	case action == "deny":
		b.settle(kind, id, ScaFailed, true)
	case action == "approve" && b.validTAN(tan):
		b.settle(kind, id, ScaFinalised, false)
	case action == "approve":
		v := scaView{Kind: kind, ID: id, Status: sca.status, Error: "The TAN is not valid."}
		b.mu.Unlock()
		renderSca(w, http.StatusUnprocessableEntity, v)
		return
	default:
		b.mu.Unlock()
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	status, target := sca.status, sca.nokURL
	if status == ScaFinalised {
		target = sca.okURL
	}
	b.mu.Unlock()

	b.logger.InfoContext(r.Context(), "sandbox authorisation completed",
		"kind", kind,
		"id", id,
		"sca_status", status,
	)

	if target == "" {
		renderSca(w, http.StatusOK, scaView{Kind: kind, ID: id, Status: status, Done: true})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
