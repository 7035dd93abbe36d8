package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient queries the test InfluxDB for points written by the sink.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient connects to a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// CountPoints returns the number of rows of measurement in the bucket,
// optionally restricted to one field. Sample dates may be years old, so the
// query spans the whole bucket.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, field string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start: 0) |> filter(fn: (r) => r._measurement == "%s")`,
		c.bucket, measurement)
	if field != "" {
		flux += fmt.Sprintf(` |> filter(fn: (r) => r._field == "%s")`, field)
	}
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// EnsureBucket creates the bucket when the init container did not. The
// organisation must already exist.
func (c *InfluxClient) EnsureBucket(ctx context.Context) error {
	buckets := c.client.BucketsAPI()
	if b, err := buckets.FindBucketByName(ctx, c.bucket); err == nil && b != nil {
		return nil
	}
	org, err := c.client.OrganizationsAPI().FindOrganizationByName(ctx, c.org)
	if err != nil {
		return fmt.Errorf("org %s: %w", c.org, err)
	}
	if _, err := buckets.CreateBucketWithName(ctx, org, c.bucket); err != nil {
		return fmt.Errorf("bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
