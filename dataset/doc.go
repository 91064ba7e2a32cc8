// Package dataset defines the sample model shared by the adaptation
// components: feature vectors tagged with a domain indicator, a stable
// row index, and an optional class label.
//
// The domain indicator follows one convention everywhere: values >= 0
// identify a source domain, values < 0 identify a target domain. Labels
// exist only for source samples; target labels are never available to
// training-time components.
package dataset
