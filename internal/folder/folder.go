package folder

// Folder is one node in the hierarchy. ParentID is nil for roots.
type Folder struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	ParentID *int64 `json:"parentId" gorm:"column:parent_id"`
}

func (Folder) TableName() string {
	return "folders"
}

// Node is a folder with its resolved children, as served by the tree
// endpoint.
type Node struct {
	Folder
	Children []*Node `json:"children"`
}

// BuildTree links flat rows into a forest. Nodes are indexed first and
// linked after every node exists, so ordering of the input rows does not
// matter. A node whose parent id does not resolve becomes a root rather
// than failing the read.
func BuildTree(folders []*Folder) []*Node {
	index := make(map[int64]*Node, len(folders))
	for _, f := range folders {
		index[f.ID] = &Node{Folder: *f, Children: []*Node{}}
	}

	roots := []*Node{}
	for _, f := range folders {
		node := index[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*f.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}
