package handlers

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/shared/constants"
)

type popupResult struct {
	OK    bool                     `json:"ok"`
	Error constants.OAuthErrorCode `json:"error,omitempty"`
}

var popupPage = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{if .Result.OK}}Sign-in complete{{else}}Sign-in failed{{end}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #f5f6fa;
            color: #2d3436;
        }
        .container { text-align: center; }
        h1 { font-size: 22px; margin: 0 0 12px 0; }
        p { margin: 8px 0; font-size: 15px; }
    </style>
</head>
<body>
    <div class="container">
        {{if .Result.OK}}
        <h1>Sign-in complete</h1>
        <p>You can return to the portal. This window closes automatically.</p>
        {{else}}
        <h1>Sign-in failed</h1>
        <p>{{.Message}}</p>
        {{end}}
    </div>
    <script>
        (function () {
            var data = {type: 'federated_complete', ok: {{.Result.OK}}, error: {{.Result.Error}}};
            var origins = {{.Origins}};
            if (window.opener) {
                origins.forEach(function (origin) {
                    try {
                        window.opener.postMessage(data, origin);
                    } catch (e) {}
                });
                setTimeout(function () { window.close(); }, 800);
            }
        })();
    </script>
</body>
</html>
`))

// renderPopupResult answers the provider redirect with a page that reports
// back to the opener and closes itself. Messages only go to the configured
// origins.
func (h *AuthHandler) renderPopupResult(c *gin.Context, status int, result popupResult) {
	origins := h.allowedOrigins
	if origins == nil {
		origins = []string{}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(status)
	var message string
	if !result.OK {
		message = constants.GetOAuthErrorMessage(result.Error)
	}

	if err := popupPage.Execute(c.Writer, struct {
		Result  popupResult
		Message string
		Origins []string
	}{Result: result, Message: message, Origins: origins}); err != nil {
		h.logger.Errorw("failed to render popup page", "error", err)
	}
}
