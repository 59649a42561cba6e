package resolve

// itemPos adapts a model tree node's stored Line/Col into errors.SourcePos.
// The resolver never knows the originating file name (model.Grammar carries
// no filename), so SourceName is always "" here; errors.FormatPos still
// renders line/col.
type itemPos struct{ line, col int }

func (p itemPos) SourceName() string { return "" }
func (p itemPos) Line() int          { return p.line }
func (p itemPos) Col() int           { return p.col }
