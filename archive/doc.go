// Package archive stores recorded raw replies so they can be parsed again.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, mainly for tests
//   - LocalStore: one file per reply under a root directory
//   - CachingStore: LRU read cache in front of any Store
//   - s3.Store: Amazon S3 via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible services
//
// Reply names are slash-separated paths such as "news/2024-05-01.xml.gz".
package archive
