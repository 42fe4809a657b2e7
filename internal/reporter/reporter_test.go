package reporter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanmeadows/coabot/internal/platform"
	"github.com/alanmeadows/coabot/internal/platform/mocks"
)

var widget = platform.RepoRef{Owner: "acme", Name: "widget"}

func mention() platform.Notification {
	return platform.Notification{
		ThreadID:   "101",
		Reason:     platform.ReasonMention,
		Unread:     true,
		Repository: widget,
		SubjectURL: "https://api.github.com/repos/acme/widget/issues/7",
	}
}

func TestParseIssueNumber(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{"https://api.github.com/repos/acme/widget/issues/7", 7, false},
		{"https://api.github.com/repos/acme/widget/pulls/42", 42, false},
		{"https://api.github.com/repos/acme/widget/issues/7/", 7, false},
		{"", 0, true},
		{"https://api.github.com/repos/acme/widget/issues", 0, true},
		{"https://api.github.com/repos/acme/widget/issues/0", 0, true},
		{"://bad", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseIssueNumber(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockPlatform(ctrl)

	gomock.InOrder(
		client.EXPECT().GetIssue(gomock.Any(), widget, 7).Return(&platform.Issue{Number: 7}, nil),
		client.EXPECT().CreateIssueComment(gomock.Any(), widget, 7, "hello").Return(nil),
	)

	require.NoError(t, New(client).PostComment(t.Context(), mention(), "hello"))
}

func TestPostComment_PlatformRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockPlatform(ctrl)

	rejected := &platform.Error{Op: "create-issue-comment", StatusCode: 403, Err: errors.New("forbidden")}
	client.EXPECT().GetIssue(gomock.Any(), widget, 7).Return(&platform.Issue{Number: 7}, nil)
	client.EXPECT().CreateIssueComment(gomock.Any(), widget, 7, "hello").Return(rejected)

	err := New(client).PostComment(t.Context(), mention(), "hello")
	require.Error(t, err)

	var ce *CommentError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "101", ce.ThreadID)
	assert.ErrorIs(t, err, rejected)
}

func TestPostComment_IssueGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockPlatform(ctrl)

	client.EXPECT().GetIssue(gomock.Any(), widget, 7).Return(nil, &platform.Error{Op: "get-issue", StatusCode: 404, Err: errors.New("not found")})

	err := New(client).PostComment(t.Context(), mention(), "hello")
	var ce *CommentError
	assert.True(t, errors.As(err, &ce))
}

func TestPostComment_BadSubjectURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockPlatform(ctrl)

	n := mention()
	n.SubjectURL = ""
	err := New(client).PostComment(t.Context(), n, "hello")
	var ce *CommentError
	assert.True(t, errors.As(err, &ce))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "```\nbears: true\n```", Preview("bears: true\n"))
	assert.Contains(t, Success("https://github.com/acme/widget/pull/12"), "https://github.com/acme/widget/pull/12")
	assert.Contains(t, Retrying(2, 3), "(2/3)")
	assert.Contains(t, Exhausted(4), "4 attempts")
	assert.Contains(t, WorkspaceFailed(errors.New("clone failed")), "clone failed")

	outcomes := []string{Success("u"), AlreadyExists(), Exhausted(4)}
	for i := range outcomes {
		for j := range outcomes {
			if i != j {
				assert.NotEqual(t, outcomes[i], outcomes[j])
			}
		}
	}
	assert.False(t, strings.Contains(AlreadyExists(), "unable"))
}
