package session

import (
	"github.com/harborlabs/boost/internal/boost/format"
	"github.com/harborlabs/boost/internal/config"
)

func renderStatus(cfg *config.Config, text string) string {
	style := config.StatusCodeblock
	if cfg != nil {
		style = cfg.StatusStyle
	}
	return format.Status(style, text)
}

func renderArtifact(html string) string {
	return format.Artifact(html)
}
