package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// Vote targets.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// DefaultVoteRetries bounds reload-and-retry after a version conflict.
const DefaultVoteRetries = 3

// VoteResult is the vote state after a successful toggle.
type VoteResult struct {
	ID string

	// PostID is set for comment votes.
	PostID    string
	Upvotes   int
	Downvotes int
	Score     int
	Outcome   domain.VoteOutcome
}

// VoteServiceConfig wires a VoteService.
type VoteServiceConfig struct {
	Posts    ports.PostRepository
	Comments ports.CommentRepository
	Metrics  *telemetry.DomainMetrics

	// OptimisticLocking makes saves compare the stored version. When false the
	// last write wins.
	OptimisticLocking bool

	// MaxRetries is how many times a conflicting vote is reloaded and
	// reapplied. Zero means DefaultVoteRetries.
	MaxRetries int
}

// VoteService toggles votes on posts and comments.
type VoteService struct {
	posts      ports.PostRepository
	comments   ports.CommentRepository
	metrics    *telemetry.DomainMetrics
	optimistic bool
	maxRetries int
}

// NewVoteService panics when a repository is missing.
func NewVoteService(cfg VoteServiceConfig) *VoteService {
	if cfg.Posts == nil || cfg.Comments == nil {
		panic("app: vote service needs post and comment repositories")
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = DefaultVoteRetries
	}

	return &VoteService{
		posts:      cfg.Posts,
		comments:   cfg.Comments,
		metrics:    cfg.Metrics,
		optimistic: cfg.OptimisticLocking,
		maxRetries: retries,
	}
}

// voteRequest is the executor input.
type voteRequest struct {
	target   string
	id       string
	voter    string
	rawType  string
	voteType domain.VoteType
}

// tally is the vote state computed by Perform and stored by Archive.
type tally struct {
	postID   string
	votes    domain.Votable
	expected int64
	outcome  domain.VoteOutcome
}

// VotePost toggles voter's voteType on a post.
func (s *VoteService) VotePost(ctx context.Context, postID, voter, voteType string) (*VoteResult, error) {
	return s.vote(ctx, &voteRequest{target: TargetPost, id: postID, voter: voter, rawType: voteType})
}

// VoteComment toggles voter's voteType on a comment.
func (s *VoteService) VoteComment(ctx context.Context, commentID, voter, voteType string) (*VoteResult, error) {
	return s.vote(ctx, &voteRequest{target: TargetComment, id: commentID, voter: voter, rawType: voteType})
}

func (s *VoteService) vote(ctx context.Context, req *voteRequest) (*VoteResult, error) {
	op := s.operation()
	logger := logging.FromContext(ctx)

	var (
		result *VoteResult
		err    error
	)

	// The first attempt is not a retry, so a conflict is retried maxRetries
	// times before it is returned.
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, err = Execute(ctx, op, req)
		if !s.isVersionConflict(err) {
			break
		}

		if attempt == s.maxRetries {
			logger.WarnContext(ctx, "vote gave up after version conflicts",
				slog.String("target", req.target),
				slog.String("id", req.id),
				slog.Int("retries", s.maxRetries),
			)

			break
		}

		s.metrics.VoteConflict(req.target)
		logger.InfoContext(ctx, "vote lost version race, retrying",
			slog.String("target", req.target),
			slog.String("id", req.id),
			slog.Int("retry", attempt+1),
		)
	}

	if err != nil {
		return nil, err
	}

	s.metrics.VoteApplied(req.target, outcomeLabel(result.Outcome))

	return result, nil
}

func (s *VoteService) isVersionConflict(err error) bool {
	step, ok := FailedStep(err)
	return ok && step == StepArchive && domain.IsConflict(err)
}

func (s *VoteService) operation() Operation[*voteRequest, *tally, *VoteResult] {
	return Operation[*voteRequest, *tally, *VoteResult]{
		Name: "vote",
		Validate: func(_ context.Context, req *voteRequest) error {
			req.voter = strings.TrimSpace(req.voter)
			if req.voter == "" {
				return domain.NewValidationError("username", "is required")
			}

			if strings.TrimSpace(req.id) == "" {
				return domain.NewValidationError("id", "is required")
			}

			vt, err := domain.ParseVoteType(req.rawType)
			if err != nil {
				return err
			}

			req.voteType = vt

			return nil
		},
		Perform: func(ctx context.Context, req *voteRequest) (*tally, error) {
			t, err := s.load(ctx, req)
			if err != nil {
				return nil, err
			}

			t.outcome, err = domain.ApplyVote(&t.votes, req.voter, req.voteType)
			if err != nil {
				return nil, err
			}

			return t, nil
		},
		Verify: func(_ context.Context, req *voteRequest, t *tally) error {
			if err := t.votes.CheckInvariants(); err != nil {
				return err
			}

			if t.votes.StanceOf(req.voter) != t.outcome.Current {
				return domain.NewConflictError(req.target, "voter stance does not match outcome")
			}

			return nil
		},
		Archive: func(ctx context.Context, req *voteRequest, t *tally) error {
			var expected *int64
			if s.optimistic {
				expected = &t.expected
			}

			if req.target == TargetComment {
				return s.comments.SaveVotes(ctx, req.id, &t.votes, expected)
			}

			return s.posts.SaveVotes(ctx, req.id, &t.votes, expected)
		},
		Respond: func(_ context.Context, req *voteRequest, t *tally) (*VoteResult, error) {
			return &VoteResult{
				ID:        req.id,
				PostID:    t.postID,
				Upvotes:   t.votes.Upvotes(),
				Downvotes: t.votes.Downvotes(),
				Score:     t.votes.Score,
				Outcome:   t.outcome,
			}, nil
		},
	}
}

// load reads the current votes of the target and copies them so the stored
// entity is untouched if a later step fails.
func (s *VoteService) load(ctx context.Context, req *voteRequest) (*tally, error) {
	if req.target == TargetComment {
		c, err := s.comments.GetByID(ctx, req.id)
		if err != nil {
			return nil, err
		}

		return &tally{postID: c.PostID, votes: c.Votes.Clone(), expected: c.Votes.Version}, nil
	}

	p, err := s.posts.GetByID(ctx, req.id)
	if err != nil {
		return nil, err
	}

	return &tally{votes: p.Votes.Clone(), expected: p.Votes.Version}, nil
}

func outcomeLabel(o domain.VoteOutcome) string {
	switch {
	case o.Removed:
		return "removed"
	case o.Previous != domain.StanceNone:
		return "switched"
	default:
		return "recorded"
	}
}
