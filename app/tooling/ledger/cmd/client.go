package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// call sends the request to the node and writes the indented response
// body to out. Any status outside of the 2xx range is an error.
func call(ctx context.Context, out io.Writer, method string, endpoint string, dataSend any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(url, "/")+endpoint, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}
	fmt.Fprintln(out, pretty.String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("node answered %s", resp.Status)
	}

	return nil
}
