package manifest

import "fmt"

// Kind identifies the root object a manifest file describes.
type Kind int

const (
	KindWorkspace Kind = iota + 1
	KindProject
	KindConfig
)

// SearchOrder is the priority in which manifest files are looked up in a
// directory. The first file found wins.
var SearchOrder = []Kind{KindWorkspace, KindProject, KindConfig}

// String returns the block name used for the kind in manifest files.
func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "workspace"
	case KindProject:
		return "project"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FileName returns the manifest file name for the kind.
func (k Kind) FileName() string {
	switch k {
	case KindWorkspace:
		return "Workspace.hcl"
	case KindProject:
		return "Project.hcl"
	case KindConfig:
		return "Config.hcl"
	default:
		return ""
	}
}

// KindFromBlock maps a root block type to its Kind.
func KindFromBlock(blockType string) (Kind, bool) {
	for _, k := range SearchOrder {
		if k.String() == blockType {
			return k, true
		}
	}
	return 0, false
}
