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

package porygonutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/porygon/cloud"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// MapServer serves the maps and GeoJSON files saved in a blob
// storage bucket.
type MapServer struct {
	bucket *blob.Bucket
	Log    logrus.FieldLogger
}

// NewMapServer returns a server of the files in the bucket named by
// bucketName (see cloud.OpenBucket).
func NewMapServer(ctx context.Context, bucketName string) (*MapServer, error) {
	b, err := cloud.OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	return &MapServer{bucket: b, Log: logrus.StandardLogger()}, nil
}

// Close closes the underlying bucket.
func (s *MapServer) Close() error { return s.bucket.Close() }

func (s *MapServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Log.WithFields(logrus.Fields{
		"url":  r.URL.String(),
		"addr": r.RemoteAddr,
	}).Info("porygon request")
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	key := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if key == "" {
		s.index(ctx, w)
		return
	}
	b, err := cloud.ReadBlob(ctx, s.bucket, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.Log.WithError(err).Error("porygon: serving file")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else if path.Ext(key) == ".geojson" {
		w.Header().Set("Content-Type", "application/geo+json")
	}
	w.Write(b)
}

// index lists the maps in the bucket.
func (s *MapServer) index(ctx context.Context, w http.ResponseWriter) {
	var maps []string
	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			s.Log.WithError(err).Error("porygon: listing maps")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if path.Ext(obj.Key) == ".html" {
			maps = append(maps, obj.Key)
		}
	}
	sort.Strings(maps)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, maps); err != nil {
		s.Log.WithError(err).Error("porygon: writing index")
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>porygon maps</title></head>
<body>
<ul>
{{- range .}}
<li><a href="/{{.}}">{{.}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve saved maps over HTTP.",
	Long: `serve starts a web server that lists and serves the maps and GeoJSON files
saved in a directory or blob storage bucket. If a TLS certificate and key are
configured the server uses HTTPS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := NewMapServer(cmd.Context(), Cfg.GetString("bucket"))
		if err != nil {
			return err
		}
		defer s.Close()

		srv := &http.Server{
			Addr:              Cfg.GetString("address"),
			Handler:           s,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
			TLSConfig: &tls.Config{
				CurvePreferences: []tls.CurveID{
					tls.CurveP256,
					tls.X25519,
				},
			},
		}
		cert, key := Cfg.GetString("tlscert"), Cfg.GetString("tlskey")
		if cert != "" && key != "" {
			logrus.Infof("porygon: listening on https://%s", srv.Addr)
			err = srv.ListenAndServeTLS(cert, key)
		} else {
			logrus.Infof("porygon: listening on http://%s", srv.Addr)
			err = srv.ListenAndServe()
		}
		return fmt.Errorf("porygon: server stopped: %v", err)
	},
	DisableAutoGenTag: true,
}
