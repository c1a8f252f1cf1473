// Package minio provides a BlobStore backed by MinIO or any other
// S3-compatible service (Ceph, Garage, SeaweedFS).
//
//	store, err := minioblob.New("localhost:9000", "scenes",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	    minioblob.WithPrefix("fields/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.EnsureBucket(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	mgr, _ := persistence.NewManager(persistence.ManagerOptions{Store: store})
//	err = eng.Save(ctx, mgr)
package minio
