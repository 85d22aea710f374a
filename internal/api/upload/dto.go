package upload

// Target is the presigned upload destination issued by the backend for one
// document side: a time-limited URL plus form fields to attach verbatim.
type Target struct {
	URL    string            `json:"url" validate:"required,url"`
	Fields map[string]string `json:"fields"`
}
