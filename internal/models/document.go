package models

// Document is a catalog record as served by the documents API.
// Field names follow the upstream JSON wire shape.
type Document struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	UploadDate   string   `json:"upload_date,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	Description  string   `json:"description,omitempty"`
	S3PublicURL  string   `json:"s3_public_url,omitempty"`
	Tags         []Tag    `json:"tags,omitempty"`
	EntitiesJSON []Entity `json:"entities_json,omitempty"`
}

// Tag is a label attached to a document.
type Tag struct {
	Name string `json:"name"`
}

// Entity is an extracted entity attached to a document.
type Entity struct {
	Type string `json:"Type"`
	Text string `json:"Text"`
}

// DocumentRef identifies a document to preview. Immutable once built
// from a catalog record.
type DocumentRef struct {
	ID          string `json:"id"`
	StorageURL  string `json:"storageUrl"`
	MimeHint    string `json:"mimeHint"` // file extension or MIME type
	DisplayName string `json:"displayName"`
}

// Ref builds a DocumentRef from a catalog record.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{
		ID:          d.ID,
		StorageURL:  d.S3PublicURL,
		MimeHint:    d.Type,
		DisplayName: d.Name,
	}
}
