// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package s3 provides a wdmigrate.RawSource over the objects in an S3
// bucket, so dumps can be migrated without first pulling them to disk.
package s3

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pilosa/wdmigrate"
	"github.com/pkg/errors"
)

// RawSource yields every object in the bucket matching a prefix, in the
// order the listing returns them.
type RawSource struct {
	bucket string

	s3      s3iface.S3API
	objects []*s3.Object
	objIdx  int
}

// NewRawSource lists bucket/prefix in region and returns a RawSource over
// the result.
func NewRawSource(region, bucket, prefix string) (*RawSource, error) {
	rs := &RawSource{bucket: bucket}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting aws session")
	}
	rs.s3 = s3.New(sess)
	input := &s3.ListObjectsInput{Bucket: aws.String(bucket), Prefix: aws.String(prefix)}
	for {
		resp, err := rs.s3.ListObjects(input)
		if err != nil {
			return nil, errors.Wrap(err, "listing objects")
		}
		rs.objects = append(rs.objects, resp.Contents...)
		if !aws.BoolValue(resp.IsTruncated) || len(resp.Contents) == 0 {
			break
		}
		input.Marker = resp.Contents[len(resp.Contents)-1].Key
	}
	return rs, nil
}

type objReader struct {
	name string
	body io.ReadCloser
}

func (o *objReader) Read(buf []byte) (int, error) { return o.body.Read(buf) }
func (o *objReader) Close() error                 { return o.body.Close() }
func (o *objReader) Name() string                 { return o.name }

// NextReader implements wdmigrate.RawSource.
func (rs *RawSource) NextReader() (wdmigrate.NamedReadCloser, error) {
	if rs.objIdx >= len(rs.objects) {
		return nil, io.EOF
	}
	obj := rs.objects[rs.objIdx]
	rs.objIdx++

	result, err := rs.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(*obj.Key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", *obj.Key)
	}
	return &objReader{name: *obj.Key, body: result.Body}, nil
}
