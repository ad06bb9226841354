/*
Copyright © 2018 the clearsky authors.
This file is part of clearsky.

clearsky is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

clearsky is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with clearsky.  If not, see <http://www.gnu.org/licenses/>.
*/

package clearskyutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
)

// bucketOpeners open a blob storage bucket by name for each
// supported provider.
var bucketOpeners = map[string]func(ctx context.Context, name string) (*blob.Bucket, error){
	"file": func(_ context.Context, dir string) (*blob.Bucket, error) { return fileblob.NewBucket(dir) },
	"gs":   gsBucket,
	"s3":   s3Bucket,
}

// IsBlob returns whether path is a blob storage location,
// for example 'gs://bucket/MERRA2_400.tavg1_2d_aer_Nx.20180101.nc4.nc'.
func IsBlob(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	_, ok := bucketOpeners[u.Scheme]
	return ok
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// in the format 'provider://name'. Any path after the bucket name is
// ignored. Supported providers are "file" for a local directory,
// "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("clearsky: opening bucket: %v", err)
	}
	open, ok := bucketOpeners[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("clearsky: opening bucket: invalid provider '%s'", u.Scheme)
	}
	return open(ctx, u.Hostname())
}

// openBlob opens the bucket holding the blob at path and
// returns it along with the key of the blob within the bucket.
func openBlob(ctx context.Context, path string) (*blob.Bucket, string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", fmt.Errorf("clearsky: parsing blob location '%s': %v", path, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return nil, "", err
	}
	return bucket, strings.TrimPrefix(u.Path, "/"), nil
}

// gsBucket opens a Google Cloud Storage bucket using the
// application default credentials.
func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an AWS S3 bucket. Credentials are read from
// the AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment
// variables, and the region from AWS_REGION.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}
