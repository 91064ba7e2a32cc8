// Package floats provides float32 vector kernels used by the adaptation
// components: row-wise L2 normalization, dot products, and the softmax
// transforms that feed pseudo-label sharpening.
package floats
