package dto

type SubmitDocumentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
}

type SubmitDocumentResponse struct {
	Source string `json:"source"`
	Queued bool   `json:"queued"`
}

// IngestDocumentMessage is the queue payload for one document.
type IngestDocumentMessage struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	UserId  string `json:"user_id,omitempty"`
}
