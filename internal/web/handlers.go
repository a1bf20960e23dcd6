package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/router"
)

// AppInfo is the JSON form of a catalogue entry.
type AppInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	Order         int      `json:"order"`
	ShowInDesktop bool     `json:"showInDesktop"`
	IsApplication bool     `json:"isApplication"`
	Views         []string `json:"views"`
}

// RouteInfo is the JSON form of a deep link.
type RouteInfo struct {
	Path    string `json:"path"`
	App     string `json:"app"`
	Index   int    `json:"index"`
	Command string `json:"command"`
}

// DeepLinkResponse answers a shareable URL.
type DeepLinkResponse struct {
	Path    string `json:"path"`
	Found   bool   `json:"found"`
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleApps(c *gin.Context) {
	configs := registry.Configs()
	out := make([]AppInfo, 0, len(configs))
	for _, cfg := range configs {
		views := make([]string, len(cfg.SubComponents))
		for i, sc := range cfg.SubComponents {
			views[i] = sc.Name
		}
		out = append(out, AppInfo{
			ID:            string(cfg.ID),
			Name:          cfg.Name,
			Icon:          cfg.Icon,
			Order:         cfg.Order,
			ShowInDesktop: cfg.ShowInDesktop,
			IsApplication: cfg.IsApplication,
			Views:         views,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRoutes(c *gin.Context) {
	paths := router.Paths()
	out := make([]RouteInfo, 0, len(paths))
	for _, r := range paths {
		out = append(out, RouteInfo{
			Path:    r.Path,
			App:     string(r.App),
			Index:   r.Index,
			Command: s.SSHCommand(r.Path),
		})
	}
	c.JSON(http.StatusOK, out)
}

// handlePath resolves any other GET through the route table.
func (s *Server) handlePath(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := router.Normalize(c.Request.URL.Path)
	_, match := router.Lookup(path)

	resp := DeepLinkResponse{Path: path}
	status := http.StatusOK
	if match == router.MatchNotFound {
		status = http.StatusNotFound
		resp.Message = fmt.Sprintf("404: %s was not found.", path)
	} else {
		resp.Found = true
		resp.Command = s.SSHCommand(path)
		resp.Message = "Open this view in your terminal:\n\n    " + resp.Command
	}

	switch c.NegotiateFormat(gin.MIMEPlain, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(status, resp)
	default:
		c.String(status, resp.Message+"\n")
	}
}

// SSHCommand returns the ssh invocation that opens path.
func (s *Server) SSHCommand(path string) string {
	cmd := "ssh -t " + s.config.SSHHost
	if s.config.SSHPort != "" && s.config.SSHPort != "22" {
		cmd += " -p " + s.config.SSHPort
	}
	if path != "" && path != "/" {
		cmd += " " + path
	}
	return cmd
}
