/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/
// Package cloud reads and writes porygon inputs and outputs in blob
// storage.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// openers open a bucket for each supported URL scheme.
var openers = map[string]func(context.Context, *url.URL) (*blob.Bucket, error){
	"file": fileBucket,
	"gs":   gsBucket,
	"s3":   s3Bucket,
}

// OpenBucket opens the bucket at the given URL. The scheme selects the
// provider: "file" for a local directory, "gs" for Google Cloud Storage
// or "s3" for AWS S3. For "file" the host and path together name the
// directory, so file://maps and file:///srv/maps are both allowed. For
// the other providers the host is the bucket name.
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("cloud: opening bucket: %v", err)
	}
	open, ok := openers[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("cloud: opening bucket %s: unsupported provider %q", bucketURL, u.Scheme)
	}
	b, err := open(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("cloud: opening bucket %s: %w", bucketURL, err)
	}
	return b, nil
}

func fileBucket(_ context.Context, u *url.URL) (*blob.Bucket, error) {
	dir := u.Host + u.Path
	if dir == "" {
		return nil, errors.New("no directory")
	}
	return fileblob.OpenBucket(dir, nil)
}

// gsBucket uses the application default credentials.
func gsBucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, u.Host, nil)
}

// s3Bucket uses the default AWS credential chain. The region is read
// from AWS_REGION, defaulting to us-east-2.
func s3Bucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	s, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, u.Host, nil)
}
