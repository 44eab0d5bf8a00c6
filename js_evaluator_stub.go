//go:build !js_eval

package store

// NewJSEvaluator returns nil unless the binary is built with the js_eval
// tag. Callers should check JSEvaluatorAvailable first.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
