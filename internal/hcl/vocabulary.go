package hcl

// blockSpec describes how a block type is translated into the document tree.
type blockSpec struct {
	// key is the document key the block is stored under.
	key string
	// labels names the document fields the block labels are stored in.
	labels []string
	// repeated blocks are collected into a sequence under key.
	repeated bool
}

// rootBlocks are the top-level blocks that define a manifest's kind.
var rootBlocks = map[string]blockSpec{
	"project":   {labels: []string{"name"}},
	"workspace": {labels: []string{"name"}},
	"config":    {},
}

// vocabulary lists the nested blocks of the manifest description language.
var vocabulary = map[string]blockSpec{
	"target":        {key: "targets", labels: []string{"name"}, repeated: true},
	"scheme":        {key: "schemes", labels: []string{"name"}, repeated: true},
	"settings":      {key: "settings"},
	"base":          {key: "base"},
	"configuration": {key: "configurations", labels: []string{"name"}, repeated: true},
	"build_phase":   {key: "build_phases", labels: []string{"kind"}, repeated: true},
	"dependency":    {key: "dependencies", repeated: true},
	"build_action":  {key: "build_action"},
}

const localsBlock = "locals"

// specFor returns the spec of a nested block. Blocks outside the vocabulary
// are kept under their own type name with labels in a "labels" field; the
// decoder ignores them.
func specFor(blockType string, labelCount int) blockSpec {
	if spec, ok := vocabulary[blockType]; ok {
		return spec
	}
	spec := blockSpec{key: blockType, repeated: true}
	if labelCount > 0 {
		spec.labels = []string{"labels"}
	}
	return spec
}
