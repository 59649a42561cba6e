package model

// Attribute keys valued by AttributeValue (spec.md §3).
const (
	AttrKey            = "key"
	AttrFlip           = "flip"
	AttrScope          = "scope"
	AttrDeclare        = "declare"
	AttrVerbosity      = "verbosity"
	AttrClassify       = "classify"
	AttrReclassify     = "reclassify"
	AttrRetroclassify  = "retroclassify"
)

// Directive flags: unvalued, stored as a set (spec.md §3).
const (
	DirMerge = "merge"
)

// AttributeSet holds the `key: value` attributes of an `@{ … }` block; each
// key takes exactly one argument (spec.md §3).
type AttributeSet map[string]string

func (a AttributeSet) Has(key string) bool         { _, ok := a[key]; return ok }
func (a AttributeSet) Get(key string) string       { return a[key] }

// DirectiveSet holds the unvalued flags of an `@{ … }` block.
type DirectiveSet map[string]bool

func (d DirectiveSet) Has(name string) bool { return d[name] }
