// Package minio implements checkpoint.Store for MinIO and other
// S3-compatible object storage.
package minio
