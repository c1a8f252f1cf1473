// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("scenes/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	mgr, err := persistence.NewManager(persistence.ManagerOptions{Store: store})
//	err = eng.Save(ctx, mgr)
//
// # Commits
//
// S3 has no compare-and-swap, so two writers saving snapshots to the same
// prefix can overwrite each other's CURRENT pointer. DDBCommitStore keeps the
// pointer in DynamoDB and commits it with a conditional write instead.
package s3
