package storage

import (
	"fmt"
	"io"
	"net/url"
	"strings"
)

func ParseS3Path(s3Path string) (bucket, key string, err error) {
	parsed, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 path '%s': %w", s3Path, err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid scheme in S3 path '%s', expected 's3'", s3Path)
	}
	bucket = parsed.Host
	key = strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 path '%s', expected s3://bucket/key", s3Path)
	}
	return bucket, key, nil
}

// ResolveLocation picks the object store for a checkpoint location and
// returns the key to fetch from it. s3:// locations go to S3, everything else
// is a path relative to the working directory. progress is only used by the
// S3 store and may be nil.
func ResolveLocation(location string, cfg S3ClientConfig, progress io.Writer) (ObjectStore, string, error) {
	if strings.HasPrefix(location, "s3://") {
		bucket, key, err := ParseS3Path(location)
		if err != nil {
			return nil, "", err
		}
		store, err := NewS3ObjectStore(bucket, cfg)
		if err != nil {
			return nil, "", err
		}
		store.SetProgressOutput(progress)
		return store, key, nil
	}

	store, err := NewLocalObjectStore(".")
	if err != nil {
		return nil, "", err
	}
	return store, location, nil
}
