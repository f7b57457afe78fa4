// Package operators holds the built-in record operators and the registry
// that builds them from configuration.
//
// Built-in kinds:
//
//	text_processor       normalize input text and apply the prompt template
//	response_summarizer  first N characters of the model response
//	image_encoder        load, downscale and base64-encode an image
//	response_parser      parse JSON objects out of the model response
//
// The model_invoker kind is registered by the caller, since it needs a
// model client.
package operators
