//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/fivetwenty-io/jira-client/pkg/jiraclient"
	"github.com/stretchr/testify/suite"
)

// ClientIntegrationTestSuite runs the library against a real Jira server
type ClientIntegrationTestSuite struct {
	suite.Suite

	config *TestConfig
	client jira.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// SetupSuite initializes the test environment
func (s *ClientIntegrationTestSuite) SetupSuite() {
	s.config = LoadTestConfig()
	s.config.SkipIfMissingConfig(s.T())

	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.client = s.config.NewClient(s.T())
}

// TearDownSuite releases the suite context
func (s *ClientIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.Require().NoError(s.client.Close())
	}

	if s.cancel != nil {
		s.cancel()
	}
}

func (s *ClientIntegrationTestSuite) TestServerInfo() {
	info, err := jiraclient.GetServerInfo(s.ctx, s.client)
	s.Require().NoError(err)
	s.NotEmpty(info.Version)
}

func (s *ClientIntegrationTestSuite) TestIssueWalkerMatchesDeclaredTotal() {
	if s.config.Project == "" {
		s.T().Skip("JIRA_TEST_PROJECT not set")
	}

	jql := "project = " + s.config.Project + " ORDER BY key"

	page, err := s.client.Issues().Search(s.ctx, jql, 0, 1, "summary")
	s.Require().NoError(err)

	declared, ok := page.DeclaredTotal()
	s.Require().True(ok)

	walker := s.client.Issues().Walker(25)
	walker.Push(jql, "summary")

	keys := make(map[string]bool)

	for issue, err := range walker.Seq(s.ctx) {
		s.Require().NoError(err)
		s.False(keys[issue.Key()], "issue %s yielded twice", issue.Key())

		keys[issue.Key()] = true
	}

	s.Require().NoError(walker.Err())
	s.Len(keys, declared)
}

func (s *ClientIntegrationTestSuite) TestProjectWalker() {
	walker := s.client.Projects().Walker(10)
	walker.Push("")

	projects, err := walker.All(s.ctx)
	s.Require().NoError(err)

	all, err := s.client.Projects().All(s.ctx, 0, 1000)
	s.Require().NoError(err)
	s.Equal(all.Total(), len(projects))
}

func (s *ClientIntegrationTestSuite) TestGroupMembers() {
	if s.config.Group == "" {
		s.T().Skip("JIRA_TEST_GROUP not set")
	}

	walker := s.client.Groups().MembersWalker(10)
	walker.Push(s.config.Group)

	members, err := walker.All(s.ctx)
	s.Require().NoError(err)

	for _, member := range members {
		s.NotEmpty(member.Email)
		s.NotEmpty(member.Mode)
	}
}

func (s *ClientIntegrationTestSuite) TestMetadataAndAutomap() {
	fields, err := s.client.Metadata().Fields(s.ctx)
	s.Require().NoError(err)
	s.Contains(fields, "summary")

	if s.config.Project == "" {
		return
	}

	s.client.SetOptions(jira.AutomapFields)
	defer s.client.SetOptions(0)

	result, err := s.client.Issues().Search(s.ctx, "project = "+s.config.Project, 0, 5, "summary")
	s.Require().NoError(err)

	for _, issue := range result.Entities() {
		s.True(issue.Fields().Has("Summary"))
	}
}

func (s *ClientIntegrationTestSuite) TestNATSMetadataCache() {
	if s.config.NATSURL == "" {
		s.T().Skip("NATS_URL not set")
	}

	config := s.config.ClientConfig()
	config.Cache = &jira.CacheConfig{
		Type: jira.CacheTypeNATS,
		NATS: &jira.NATSKVConfig{URL: s.config.NATSURL, Bucket: "jira_metadata_it"},
	}

	client, err := jiraclient.New(s.ctx, config)
	s.Require().NoError(err)

	defer func() { s.NoError(client.Close()) }()

	first, err := client.Metadata().Statuses(s.ctx)
	s.Require().NoError(err)

	second, err := client.Metadata().Statuses(s.ctx)
	s.Require().NoError(err)
	s.Len(second, len(first))
}

func TestClientIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ClientIntegrationTestSuite))
}
