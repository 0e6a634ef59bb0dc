package graph

import (
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"go.trai.ch/stitch/internal/core/domain"
)

// assetToken matches asset("relative/path") in scripts and stylesheets.
var assetToken = regexp.MustCompile(`\basset\(\s*(?:"([^"\n]*)"|'([^'\n]*)')\s*\)`)

// rewriteAssets replaces every asset token of m with its quoted output path and records the source files.
func rewriteAssets(project *domain.Project, m *domain.Module) {
	if !assetToken.MatchString(m.Contents) {
		return
	}
	m.Contents = assetToken.ReplaceAllStringFunc(m.Contents, func(token string) string {
		sub := assetToken.FindStringSubmatch(token)
		rel := sub[1]
		if rel == "" {
			rel = sub[2]
		}
		src := filepath.Join(m.Dir(), filepath.FromSlash(rel))
		if !slices.Contains(m.Assets, src) {
			m.Assets = append(m.Assets, src)
		}
		return strconv.Quote(project.AssetPath(m, src))
	})
}
