package packer

import (
	"encoding/json"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// ManifestFile is the name of the build manifest in the output directory.
const ManifestFile = "stitch.manifest.json"

// BundleInfo describes one emitted bundle.
type BundleInfo struct {
	Name             string   `json:"name"`
	Source           string   `json:"source"`
	Style            string   `json:"style,omitempty"`
	Entry            bool     `json:"entry,omitzero"`
	Request          bool     `json:"request,omitzero"`
	Modules          int      `json:"modules"`
	HardDependencies []string `json:"hardDependencies,omitempty"`
}

// Manifest lists every bundle in load order.
type Manifest struct {
	Bundles []BundleInfo `json:"bundles"`
}

// BuildManifest describes the bundles of sess.
func BuildManifest(sess *domain.Session) Manifest {
	var m Manifest
	for b := range sess.Bundles.All() {
		info := BundleInfo{
			Name:             b.Name.String(),
			Source:           ScriptFile(b),
			Entry:            b.Entry,
			Request:          b.Request,
			Modules:          len(b.Order),
			HardDependencies: domain.Strings(b.HardDependencies),
		}
		if b.Style != "" {
			info.Style = StyleFile(b)
		}
		if len(info.HardDependencies) == 0 {
			info.HardDependencies = nil
		}
		m.Bundles = append(m.Bundles, info)
	}
	return m
}

// Files turns packed bundles and the manifest into output instructions.
func Files(sess *domain.Session) ([]domain.OutputFile, error) {
	var files []domain.OutputFile
	for b := range sess.Bundles.All() {
		files = append(files, domain.OutputFile{Outfile: ScriptFile(b), Contents: b.Contents})
		if b.Style != "" {
			files = append(files, domain.OutputFile{Outfile: StyleFile(b), Contents: b.Style})
		}
	}

	data, err := json.MarshalIndent(BuildManifest(sess), "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode build manifest")
	}
	files = append(files, domain.OutputFile{Outfile: ManifestFile, Contents: string(data) + "\n"})
	return files, nil
}
