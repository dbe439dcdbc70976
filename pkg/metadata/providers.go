package metadata

import (
	"fmt"
	"os"
)

// A providerFunc inspects the environment and returns the CI and git blocks
// for one provider, or (nil, nil) when that provider isn't hosting this run.
type providerFunc func() (*CI, *Git)

// Detection order is stable; the first provider whose marker variable is set
// wins.
var providers = []providerFunc{
	githubActions,
	gitlabCI,
	circleCI,
	jenkins,
	travisCI,
	buildkite,
	azurePipelines,
}

func githubActions() (*CI, *Git) {
	if os.Getenv("GITHUB_ACTIONS") == "" {
		return nil, nil
	}
	server := os.Getenv("GITHUB_SERVER_URL")
	if server == "" {
		server = "https://github.com"
	}
	repo := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")

	ci := &CI{
		Provider:       "github",
		PipelineID:     runID,
		PipelineName:   os.Getenv("GITHUB_WORKFLOW"),
		PipelineNumber: os.Getenv("GITHUB_RUN_NUMBER"),
		JobName:        os.Getenv("GITHUB_JOB"),
		WorkspacePath:  os.Getenv("GITHUB_WORKSPACE"),
	}
	if repo != "" && runID != "" {
		ci.PipelineURL = fmt.Sprintf("%s/%s/actions/runs/%s", server, repo, runID)
	}

	g := &Git{
		CommitSHA: os.Getenv("GITHUB_SHA"),
		Branch:    os.Getenv("GITHUB_REF"),
	}
	if repo != "" {
		g.RepositoryURL = fmt.Sprintf("%s/%s.git", server, repo)
	}
	return ci, g
}

func gitlabCI() (*CI, *Git) {
	if os.Getenv("GITLAB_CI") == "" {
		return nil, nil
	}
	ci := &CI{
		Provider:       "gitlab",
		PipelineID:     os.Getenv("CI_PIPELINE_ID"),
		PipelineName:   os.Getenv("CI_PROJECT_PATH"),
		PipelineNumber: os.Getenv("CI_PIPELINE_IID"),
		PipelineURL:    os.Getenv("CI_PIPELINE_URL"),
		JobName:        os.Getenv("CI_JOB_NAME"),
		JobURL:         os.Getenv("CI_JOB_URL"),
		StageName:      os.Getenv("CI_JOB_STAGE"),
		WorkspacePath:  os.Getenv("CI_PROJECT_DIR"),
	}
	g := &Git{
		RepositoryURL: os.Getenv("CI_REPOSITORY_URL"),
		CommitSHA:     os.Getenv("CI_COMMIT_SHA"),
		Branch:        os.Getenv("CI_COMMIT_REF_NAME"),
		Tag:           os.Getenv("CI_COMMIT_TAG"),
		CommitMessage: os.Getenv("CI_COMMIT_MESSAGE"),
	}
	return ci, g
}

func circleCI() (*CI, *Git) {
	if os.Getenv("CIRCLECI") == "" {
		return nil, nil
	}
	ci := &CI{
		Provider:       "circleci",
		PipelineID:     os.Getenv("CIRCLE_WORKFLOW_ID"),
		PipelineName:   os.Getenv("CIRCLE_PROJECT_REPONAME"),
		PipelineNumber: os.Getenv("CIRCLE_BUILD_NUM"),
		PipelineURL:    os.Getenv("CIRCLE_BUILD_URL"),
		JobName:        os.Getenv("CIRCLE_JOB"),
		WorkspacePath:  os.Getenv("CIRCLE_WORKING_DIRECTORY"),
	}
	g := &Git{
		RepositoryURL: os.Getenv("CIRCLE_REPOSITORY_URL"),
		CommitSHA:     os.Getenv("CIRCLE_SHA1"),
		Branch:        os.Getenv("CIRCLE_BRANCH"),
		Tag:           os.Getenv("CIRCLE_TAG"),
	}
	return ci, g
}

func jenkins() (*CI, *Git) {
	if os.Getenv("JENKINS_URL") == "" {
		return nil, nil
	}
	ci := &CI{
		Provider:       "jenkins",
		PipelineID:     os.Getenv("BUILD_TAG"),
		PipelineName:   os.Getenv("JOB_NAME"),
		PipelineNumber: os.Getenv("BUILD_NUMBER"),
		PipelineURL:    os.Getenv("BUILD_URL"),
		WorkspacePath:  os.Getenv("WORKSPACE"),
	}
	g := &Git{
		RepositoryURL: os.Getenv("GIT_URL"),
		CommitSHA:     os.Getenv("GIT_COMMIT"),
		Branch:        os.Getenv("GIT_BRANCH"),
	}
	return ci, g
}

func travisCI() (*CI, *Git) {
	if os.Getenv("TRAVIS") == "" {
		return nil, nil
	}
	slug := os.Getenv("TRAVIS_REPO_SLUG")
	ci := &CI{
		Provider:       "travisci",
		PipelineID:     os.Getenv("TRAVIS_BUILD_ID"),
		PipelineName:   slug,
		PipelineNumber: os.Getenv("TRAVIS_BUILD_NUMBER"),
		PipelineURL:    os.Getenv("TRAVIS_BUILD_WEB_URL"),
		JobURL:         os.Getenv("TRAVIS_JOB_WEB_URL"),
		WorkspacePath:  os.Getenv("TRAVIS_BUILD_DIR"),
	}
	branch := os.Getenv("TRAVIS_PULL_REQUEST_BRANCH")
	if branch == "" {
		branch = os.Getenv("TRAVIS_BRANCH")
	}
	g := &Git{
		CommitSHA:     os.Getenv("TRAVIS_COMMIT"),
		Branch:        branch,
		Tag:           os.Getenv("TRAVIS_TAG"),
		CommitMessage: os.Getenv("TRAVIS_COMMIT_MESSAGE"),
	}
	if slug != "" {
		g.RepositoryURL = fmt.Sprintf("https://github.com/%s.git", slug)
	}
	return ci, g
}

func buildkite() (*CI, *Git) {
	if os.Getenv("BUILDKITE") == "" {
		return nil, nil
	}
	ci := &CI{
		Provider:       "buildkite",
		PipelineID:     os.Getenv("BUILDKITE_BUILD_ID"),
		PipelineName:   os.Getenv("BUILDKITE_PIPELINE_SLUG"),
		PipelineNumber: os.Getenv("BUILDKITE_BUILD_NUMBER"),
		PipelineURL:    os.Getenv("BUILDKITE_BUILD_URL"),
		JobName:        os.Getenv("BUILDKITE_LABEL"),
		WorkspacePath:  os.Getenv("BUILDKITE_BUILD_CHECKOUT_PATH"),
	}
	g := &Git{
		RepositoryURL: os.Getenv("BUILDKITE_REPO"),
		CommitSHA:     os.Getenv("BUILDKITE_COMMIT"),
		Branch:        os.Getenv("BUILDKITE_BRANCH"),
		Tag:           os.Getenv("BUILDKITE_TAG"),
		CommitMessage: os.Getenv("BUILDKITE_MESSAGE"),
	}
	return ci, g
}

func azurePipelines() (*CI, *Git) {
	if os.Getenv("TF_BUILD") == "" {
		return nil, nil
	}
	ci := &CI{
		Provider:       "azurepipelines",
		PipelineID:     os.Getenv("BUILD_BUILDID"),
		PipelineName:   os.Getenv("BUILD_DEFINITIONNAME"),
		PipelineNumber: os.Getenv("BUILD_BUILDNUMBER"),
		JobName:        os.Getenv("SYSTEM_JOBDISPLAYNAME"),
		StageName:      os.Getenv("SYSTEM_STAGEDISPLAYNAME"),
		WorkspacePath:  os.Getenv("BUILD_SOURCESDIRECTORY"),
	}
	if uri, project := os.Getenv("SYSTEM_TEAMFOUNDATIONSERVERURI"), os.Getenv("SYSTEM_TEAMPROJECTID"); uri != "" && project != "" {
		ci.PipelineURL = fmt.Sprintf("%s%s/_build/results?buildId=%s", uri, project, os.Getenv("BUILD_BUILDID"))
	}
	g := &Git{
		RepositoryURL: os.Getenv("BUILD_REPOSITORY_URI"),
		CommitSHA:     os.Getenv("BUILD_SOURCEVERSION"),
		Branch:        os.Getenv("BUILD_SOURCEBRANCH"),
		CommitMessage: os.Getenv("BUILD_SOURCEVERSIONMESSAGE"),
	}
	return ci, g
}
