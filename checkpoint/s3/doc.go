// Package s3 implements checkpoint.Store for Amazon S3.
//
// Snapshots are uploaded with the SDK's multipart upload manager, which
// keeps large memory banks moving without buffering the whole object in
// one request.
package s3
