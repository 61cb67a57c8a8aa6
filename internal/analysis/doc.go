// Package analysis turns the artifacts gathered for a release into the
// published report. The preprocess half derives evidence and claim cards
// from the event figures and the official/media artifacts; the analyze half
// asks the completion service for a verdict and renders the markdown report,
// falling back to a deterministic template whenever the model is
// unconfigured or produces unusable output.
package analysis
