// Package s3 provides an archive.Store backed by Amazon S3.
//
// # Basic Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "replies/")
//	resp, err := parser.ParseArchived(ctx, store, "news/2024-05-01.xml.gz")
//
// Uploads go through the s3 manager, so large recorded replies are sent as
// multipart uploads.
package s3
