// Package metadata discovers where a trigger request is coming from: the CI
// provider and its pipeline coordinates, and the git state of the workspace.
// Everything here is best-effort; a missing provider or repository simply
// yields fewer fields.
package metadata

import (
	"os"
	"strings"
)

// Metadata is attached verbatim to every trigger request.
type Metadata struct {
	CI         *CI    `json:"ci,omitempty"`
	Git        *Git   `json:"git,omitempty"`
	TriggerApp string `json:"trigger_app"`
}

// CI identifies the provider and the pipeline/job/stage the invocation runs
// in. Empty fields are dropped on the wire.
type CI struct {
	Provider       string `json:"provider_name,omitempty"`
	PipelineID     string `json:"pipeline_id,omitempty"`
	PipelineName   string `json:"pipeline_name,omitempty"`
	PipelineNumber string `json:"pipeline_number,omitempty"`
	PipelineURL    string `json:"pipeline_url,omitempty"`
	JobName        string `json:"job_name,omitempty"`
	JobURL         string `json:"job_url,omitempty"`
	StageName      string `json:"stage_name,omitempty"`
	WorkspacePath  string `json:"workspace_path,omitempty"`
}

// Git captures the commit under test.
type Git struct {
	RepositoryURL  string `json:"repository_url,omitempty"`
	CommitSHA      string `json:"commit_sha,omitempty"`
	Branch         string `json:"branch,omitempty"`
	Tag            string `json:"tag,omitempty"`
	CommitMessage  string `json:"commit_message,omitempty"`
	AuthorName     string `json:"author_name,omitempty"`
	AuthorEmail    string `json:"author_email,omitempty"`
	AuthorDate     string `json:"author_date,omitempty"`
	CommitterName  string `json:"committer_name,omitempty"`
	CommitterEmail string `json:"committer_email,omitempty"`
	CommitterDate  string `json:"committer_date,omitempty"`
}

// Collect assembles the metadata for one trigger request: CI provider
// detection, local git discovery when no provider was detected, and explicit
// environment overrides on top.
func Collect(triggerApp string) *Metadata {
	m := &Metadata{TriggerApp: triggerApp}

	for _, detect := range providers {
		if ci, g := detect(); ci != nil {
			m.CI = ci
			m.Git = g
			break
		}
	}

	if m.CI == nil {
		m.CI = &CI{}
	}
	applyCIEnvOverrides(m.CI)
	if *m.CI == (CI{}) {
		m.CI = nil
	}

	if m.Git == nil {
		m.Git = discoverLocalGit(".")
	}
	if m.Git == nil {
		m.Git = &Git{}
	}

	applyGitEnvOverrides(m.Git)
	resolveBranchOrTag(m.Git, os.Getenv("DD_GIT_TAG"))

	if *m.Git == (Git{}) {
		m.Git = nil
	}
	return m
}

// NormalizeRef strips the usual ref prefixes so that only the bare branch or
// tag name travels on the wire.
func NormalizeRef(ref string) string {
	for _, p := range []string{"refs/heads/", "refs/", "origin/", "tags/"} {
		ref = strings.TrimPrefix(ref, p)
	}
	return ref
}

// A ref under a tags/ namespace denotes a tag even when it arrived through a
// branch-shaped variable.
func isTagRef(ref string) bool {
	return strings.HasPrefix(ref, "refs/tags/") ||
		strings.Contains(ref, "origin/tags/") ||
		strings.Contains(ref, "refs/heads/tags/")
}

// resolveBranchOrTag decides whether the branch-shaped value discovered so
// far names a branch or a tag. An explicitly supplied tag clears the branch
// unconditionally.
func resolveBranchOrTag(g *Git, explicitTag string) {
	if explicitTag != "" {
		g.Tag = NormalizeRef(explicitTag)
		g.Branch = ""
		return
	}
	if g.Tag != "" {
		g.Tag = NormalizeRef(g.Tag)
		g.Branch = ""
		return
	}
	if g.Branch == "" {
		return
	}
	if isTagRef(g.Branch) {
		g.Tag = NormalizeRef(g.Branch)
		g.Branch = ""
		return
	}
	g.Branch = NormalizeRef(g.Branch)
}

func applyGitEnvOverrides(g *Git) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&g.RepositoryURL, "DD_GIT_REPOSITORY_URL")
	override(&g.CommitSHA, "DD_GIT_COMMIT_SHA")
	override(&g.Branch, "DD_GIT_BRANCH")
	override(&g.CommitMessage, "DD_GIT_COMMIT_MESSAGE")
	override(&g.AuthorName, "DD_GIT_COMMIT_AUTHOR_NAME")
	override(&g.AuthorEmail, "DD_GIT_COMMIT_AUTHOR_EMAIL")
	override(&g.AuthorDate, "DD_GIT_COMMIT_AUTHOR_DATE")
	override(&g.CommitterName, "DD_GIT_COMMIT_COMMITTER_NAME")
	override(&g.CommitterEmail, "DD_GIT_COMMIT_COMMITTER_EMAIL")
	override(&g.CommitterDate, "DD_GIT_COMMIT_COMMITTER_DATE")
}

// applyCIEnvOverrides folds the DD_CI_* variables over a detected (or empty)
// CI block.
func applyCIEnvOverrides(ci *CI) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&ci.Provider, "DD_CI_PROVIDER_NAME")
	override(&ci.PipelineID, "DD_CI_PIPELINE_ID")
	override(&ci.PipelineName, "DD_CI_PIPELINE_NAME")
	override(&ci.PipelineNumber, "DD_CI_PIPELINE_NUMBER")
	override(&ci.PipelineURL, "DD_CI_PIPELINE_URL")
	override(&ci.JobName, "DD_CI_JOB_NAME")
	override(&ci.JobURL, "DD_CI_JOB_URL")
	override(&ci.StageName, "DD_CI_STAGE_NAME")
	override(&ci.WorkspacePath, "DD_CI_WORKSPACE_PATH")
}
