// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/nick29581/rustc-perf/storage/report"
)

// uploadStatus is the response to an /upload POST.
type uploadStatus struct {
	// Commits lists the artifact revisions stored by this upload.
	Commits []string `json:"commits"`
	// ViewURL is a URL that can be used to compare the last two
	// uploaded revisions.
	ViewURL string `json:"viewurl,omitempty"`
}

// upload handles POST requests to /upload. The body must be a
// multipart/form-data payload whose "file" parts each contain one
// collector run report. The upload is atomic per report, not across
// reports: earlier reports stay stored if a later one fails.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "/upload must be called as a POST request", http.StatusMethodNotAllowed)
		return
	}
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	status, err := a.processUpload(r, mr)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}

func (a *App) processUpload(r *http.Request, mr *multipart.Reader) (*uploadStatus, error) {
	var commits []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed or truncated body is an error, not the
			// end of the form; nothing after it may be trusted.
			return nil, err
		}
		name := p.FormName()
		if name == "commit" {
			break
		}
		if name != "file" {
			return nil, fmt.Errorf("unexpected field %q", name)
		}
		rep, err := report.Read(p)
		if err != nil {
			return nil, err
		}
		if err := a.DB.InsertReport(r.Context(), rep); err != nil {
			return nil, err
		}
		commits = append(commits, rep.Commit)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("no files in upload")
	}

	status := &uploadStatus{Commits: commits}
	if len(commits) >= 2 {
		a, b := commits[len(commits)-2], commits[len(commits)-1]
		status.ViewURL = fmt.Sprintf("/perf/get?start=%s&end=%s", a, b)
	}
	return status, nil
}
