package dto

type UploadDocumentResponse struct {
	SessionId string `json:"session_id"`
	ViewerUrl string `json:"viewer_url,omitempty"`
}

type AskRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	UserId    string `json:"user_id" validate:"required"`
	Question  string `json:"question" validate:"required"`
}

type AskResponse struct {
	Answer string `json:"answer"`
	Intent string `json:"intent"`
}
