package archive

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type recordingClient struct {
	input *s3.PutObjectInput
	body  []byte
}

func (c *recordingClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.input = in
	c.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	rc := &recordingClient{}
	a := &S3Archive{client: rc, bucket: "relatorios"}

	if err := a.Put(context.Background(), "reports/x.csv", "text/csv", []byte("a;b\n")); err != nil {
		t.Fatal(err)
	}
	if *rc.input.Bucket != "relatorios" || *rc.input.Key != "reports/x.csv" {
		t.Errorf("unexpected input bucket=%s key=%s", *rc.input.Bucket, *rc.input.Key)
	}
	if string(rc.body) != "a;b\n" {
		t.Errorf("body = %q", rc.body)
	}
}

func TestKey(t *testing.T) {
	at := time.Date(2025, 4, 9, 14, 30, 5, 0, time.UTC)
	got := Key("pagamentos", "../pagamentos 2025.csv", at)
	want := "reports/pagamentos/2025/04/20250409T143005_pagamentos_2025.csv"
	if got != want {
		t.Errorf("Key = %s, want %s", got, want)
	}
}
