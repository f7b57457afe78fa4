package operators

// Default field names.
const (
	FieldInputText     = "input_text"
	FieldProcessedText = "processed_text"
	FieldModelResponse = "model_response"
	FieldSummary       = "summary"
	FieldImagePath     = "image_path"
	FieldImageBase64   = "image_base64"
	FieldImageTokens   = "estimated_image_tokens"
	FieldParsed        = "parsed"
)

// Kinds.
const (
	KindTextProcessor      = "text_processor"
	KindModelInvoker       = "model_invoker"
	KindResponseSummarizer = "response_summarizer"
	KindImageEncoder       = "image_encoder"
	KindResponseParser     = "response_parser"
)

// DefaultImagePrompt is sent with each image when no prompt is configured.
const DefaultImagePrompt = "Describe this image in detail."
