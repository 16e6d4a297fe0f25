package model

// FolderColors are the accent colors offered when creating a folder.
var FolderColors = []string{
	"#ef4444", "#f97316", "#eab308", "#22c55e",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#ec4899",
}

// Folder groups articles. Order is the manual sort position, assigned as the
// owner's folder count at creation time.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
	UserID    string `json:"userId"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name   string
	Color  string
	Order  int
	UserID string
}

// NewFolder creates a Folder with generated ID and creation timestamp.
func NewFolder(params NewFolderParams) Folder {
	color := params.Color
	if color == "" {
		color = FolderColors[0]
	}

	return Folder{
		ID:        NewID(),
		Name:      params.Name,
		Color:     color,
		Order:     params.Order,
		CreatedAt: Now(),
		UserID:    params.UserID,
	}
}
