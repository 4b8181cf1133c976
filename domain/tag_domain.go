package domain

var (
	MessageSuccessGetTags   = "success get tags"
	MessageSuccessCreateTag = "tag created successfully"

	MessageFailedGetTags   = "failed to get tags"
	MessageFailedCreateTag = "failed to create tag"
)

// TagColorPalette is the fixed set of allowed tag colors. Colors are unique
// per tag, so at most one tag can carry each palette entry.
var TagColorPalette = map[string]string{
	"#FED764": "Yellow",
	"#7FBFBF": "Blue",
	"#C9B2D9": "Lilac",
}

type (
	CreateTagRequest struct {
		Name  string `json:"name" validate:"required,max=200"`
		Color string `json:"color" validate:"required,hexcolor"`
		Slug  string `json:"slug" validate:"required,max=50"`
	}

	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}
)
