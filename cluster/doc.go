// Package cluster implements spherical k-means: Lloyd-style clustering on
// the unit hypersphere with cosine similarity as the assignment metric.
//
// Unlike conventional k-means the clusterer can be seeded with externally
// supplied centroids, which is how source-class centroids drive the
// clustering of target-domain features during domain adaptation.
package cluster
