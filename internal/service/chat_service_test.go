package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/pkg/quota"
	"tai-backend/internal/repository/contract"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/pkg/assistant"
	"tai-backend/pkg/embedding"
	"tai-backend/pkg/guardrail"
	"tai-backend/pkg/llm"
)

// --- fakes ---

type fakeLLM struct {
	response string
	err      error
	called   bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.called = true
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.called = true
	return f.response, f.err
}

type fakeEmbedder struct {
	vector  []float32
	vectors [][]float32 // overrides the one-per-text default when set
	err     error
}

func (f *fakeEmbedder) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

type fakeLimiter struct {
	err   error
	calls int
}

func (f *fakeLimiter) Allow(ctx context.Context, userID string) error {
	f.calls++
	return f.err
}

type fakeCourseService struct {
	ICourseService
	policy guardrail.Policy
}

func (f *fakeCourseService) GetPolicy(ctx context.Context, courseId uuid.UUID) (guardrail.Policy, error) {
	return f.policy, nil
}

type fakeSessionRepo struct {
	session        *entity.ChatSession
	deletedCourses []uuid.UUID
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error { return nil }
func (f *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error { return nil }
func (f *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error                { return nil }
func (f *fakeSessionRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}
func (f *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return f.session, nil
}
func (f *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	if f.session == nil {
		return nil, nil
	}
	return []*entity.ChatSession{f.session}, nil
}

type fakeMessageRepo struct {
	history        []*entity.ChatMessage
	created        []*entity.ChatMessage
	deletedCourses []uuid.UUID
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}

func (f *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return f.history, nil
}

func (f *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.history)), nil
}

type fakeChunkRepo struct {
	scored         []*contract.ScoredChunk
	deletedCourses []uuid.UUID
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error { return nil }
func (f *fakeChunkRepo) DeleteByFileId(ctx context.Context, fileId uuid.UUID) error   { return nil }
func (f *fakeChunkRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, courseId uuid.UUID, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	return f.scored, nil
}

type fakeFileRepo struct {
	files          []*entity.CourseFile
	deletedCourses []uuid.UUID
}

func (f *fakeFileRepo) Create(ctx context.Context, file *entity.CourseFile) error { return nil }
func (f *fakeFileRepo) Update(ctx context.Context, file *entity.CourseFile) error { return nil }
func (f *fakeFileRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }
func (f *fakeFileRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}
func (f *fakeFileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseFile, error) {
	return nil, nil
}
func (f *fakeFileRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseFile, error) {
	return f.files, nil
}
func (f *fakeFileRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.files)), nil
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	chunks   *fakeChunkRepo
	files    *fakeFileRepo
	courses  contract.CourseRepository
	rails    contract.GuardrailRepository
	members  contract.UserCourseRepository
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) UserRepository() contract.UserRepository             { return nil }
func (f *fakeUnitOfWork) UserCourseRepository() contract.UserCourseRepository { return f.members }
func (f *fakeUnitOfWork) CourseRepository() contract.CourseRepository         { return f.courses }
func (f *fakeUnitOfWork) GuardrailRepository() contract.GuardrailRepository   { return f.rails }
func (f *fakeUnitOfWork) CourseFileRepository() contract.CourseFileRepository { return f.files }
func (f *fakeUnitOfWork) ChunkRepository() contract.ChunkRepository           { return f.chunks }
func (f *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return f.sessions
}
func (f *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return f.messages
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// --- fixtures ---

type chatFixture struct {
	service  IChatService
	uow      *fakeUnitOfWork
	limiter  *fakeLimiter
	oracle   *fakeLLM
	writer   *fakeLLM
	embedder *fakeEmbedder
	session  *entity.ChatSession
	userId   uuid.UUID
}

func newChatFixture(scored []*contract.ScoredChunk, files []*entity.CourseFile, history []*entity.ChatMessage) *chatFixture {
	userId := uuid.New()
	session := &entity.ChatSession{
		Id:       uuid.New(),
		CourseId: uuid.New(),
		UserId:   userId,
		Title:    "Week 3 recursion",
	}

	// Retrieved chunks belong to the queried course unless a test says
	// otherwise.
	for _, sc := range scored {
		if sc.Chunk.CourseId == uuid.Nil {
			sc.Chunk.CourseId = session.CourseId
		}
	}

	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{session: session},
		messages: &fakeMessageRepo{history: history},
		chunks:   &fakeChunkRepo{scored: scored},
		files:    &fakeFileRepo{files: files},
	}
	oracle := &fakeLLM{}
	writer := &fakeLLM{}
	limiter := &fakeLimiter{}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}

	svc := NewChatService(
		&fakeFactory{uow: uow},
		&fakeCourseService{policy: guardrail.DefaultPolicy()},
		embedder,
		guardrail.NewEngine(oracle),
		assistant.NewSynthesizer(writer),
		limiter,
		nil,
		5,
	)

	return &chatFixture{
		service:  svc,
		uow:      uow,
		limiter:  limiter,
		oracle:   oracle,
		writer:   writer,
		embedder: embedder,
		session:  session,
		userId:   userId,
	}
}

func scoredChunk(fileId uuid.UUID, index int, content string) *contract.ScoredChunk {
	return &contract.ScoredChunk{
		Chunk: &entity.Chunk{
			Id:           uuid.New(),
			CourseFileId: fileId,
			Content:      content,
			ChunkIndex:   index,
		},
		Similarity: 0.87,
	}
}

// --- tests ---

func TestSendChatRefusesWhenNothingIsIndexed(t *testing.T) {
	fx := newChatFixture(nil, nil, nil)
	// Provider responses would produce garbage if either model were called.
	fx.oracle.response = "not json"
	fx.writer.response = "should never be used"

	res, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "What is the capital of France?",
	})
	require.NoError(t, err)

	assert.Equal(t, assistant.RefusalMessage, res.Message.Content)
	assert.Equal(t, string(guardrail.ActionRefuseOutOfScope), res.Action)
	assert.Equal(t, 0, res.HintLevel)
	assert.Empty(t, res.Message.Sources)
	assert.NotNil(t, res.Message.Sources)

	assert.False(t, fx.oracle.called, "zero hits must be refused locally")
	assert.False(t, fx.writer.called, "refusals must not reach the synthesizer")

	// Both sides of the turn are persisted: the question and the refusal.
	require.Len(t, fx.uow.messages.created, 2)
	assert.Equal(t, entity.ChatRoleUser, fx.uow.messages.created[0].Role)
	assert.Equal(t, entity.ChatRoleAssistant, fx.uow.messages.created[1].Role)
	assert.Equal(t, assistant.RefusalMessage, fx.uow.messages.created[1].Content)
	require.NotNil(t, fx.uow.messages.created[1].HintLevel)
	assert.Equal(t, 0, *fx.uow.messages.created[1].HintLevel)
}

func TestSendChatSynthesizesWithExcerpts(t *testing.T) {
	fileId := uuid.New()
	fx := newChatFixture(
		[]*contract.ScoredChunk{
			scoredChunk(fileId, 0, "Recursion needs a base case."),
			scoredChunk(fileId, 3, "The call stack unwinds after the base case."),
		},
		[]*entity.CourseFile{{Id: fileId, Filename: "week3-recursion.md"}},
		nil,
	)
	fx.oracle.response = `{"action": "answer", "hint_level": 1, "notes_for_assistant": "Guide toward the base case."}`
	fx.writer.response = "Think about what stops the recursion."

	res, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "Why does my recursive function never stop?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Think about what stops the recursion.", res.Message.Content)
	assert.Equal(t, string(guardrail.ActionAnswer), res.Action)
	assert.Equal(t, 1, res.HintLevel)

	require.Len(t, res.Message.Sources, 2)
	assert.Equal(t, "week3-recursion.md", res.Message.Sources[0].Filename)
	assert.Equal(t, 0, res.Message.Sources[0].ChunkIndex)
	assert.Equal(t, 3, res.Message.Sources[1].ChunkIndex)

	require.Len(t, fx.uow.messages.created, 2)
	stored := fx.uow.messages.created[1]
	require.NotNil(t, stored.Action)
	assert.Equal(t, string(guardrail.ActionAnswer), *stored.Action)
	assert.Equal(t, res.Message.Sources, stored.Sources)
}

func TestSendChatHintLevelIsClampedToPolicy(t *testing.T) {
	fileId := uuid.New()
	fx := newChatFixture(
		[]*contract.ScoredChunk{scoredChunk(fileId, 0, "Some material.")},
		[]*entity.CourseFile{{Id: fileId, Filename: "notes.txt"}},
		nil,
	)
	// Default policy caps hints at 2; the oracle proposing 3 must not win.
	fx.oracle.response = `{"action": "answer", "hint_level": 3, "notes_for_assistant": "Full walkthrough."}`
	fx.writer.response = "Here is a nudge."

	res, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "Just give me everything",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.HintLevel)
}

func TestSendChatAbortsOnCrossCourseChunk(t *testing.T) {
	fileId := uuid.New()
	foreign := scoredChunk(fileId, 0, "Material from somewhere else.")
	foreign.Chunk.CourseId = uuid.New()

	fx := newChatFixture(
		[]*contract.ScoredChunk{foreign},
		[]*entity.CourseFile{{Id: fileId, Filename: "notes.txt"}},
		nil,
	)
	fx.oracle.response = `{"action": "answer", "hint_level": 1, "notes_for_assistant": ""}`
	fx.writer.response = "should never be produced"

	_, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "What does the lecture say?",
	})

	var scopeErr *contract.ScopeViolationError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, fx.session.CourseId, scopeErr.QueryCourseId)
	assert.Equal(t, foreign.Chunk.CourseId, scopeErr.ChunkCourseId)

	assert.False(t, fx.oracle.called, "a cross-course result must abort before any model call")
	// Only the user's question made it in; no assistant turn may be built
	// from another course's material.
	require.Len(t, fx.uow.messages.created, 1)
	assert.Equal(t, entity.ChatRoleUser, fx.uow.messages.created[0].Role)
}

func TestSendChatEmbedderLengthBreachIsAnOutage(t *testing.T) {
	fx := newChatFixture(nil, nil, nil)
	// Two vectors for one text breaks the batch contract. That must surface
	// as an upstream failure, not as an empty retrieval and a refusal.
	fx.embedder.vectors = [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	res, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "Explain the base case",
	})

	var oracleErr *embedding.OracleError
	require.ErrorAs(t, err, &oracleErr)
	assert.Nil(t, res)
	// Only the user message is stored; a broken embedder must not mint a
	// canned assistant reply.
	require.Len(t, fx.uow.messages.created, 1)
	assert.Equal(t, entity.ChatRoleUser, fx.uow.messages.created[0].Role)
}

func TestSendChatQuotaExceeded(t *testing.T) {
	fx := newChatFixture(nil, nil, nil)
	fx.limiter.err = &quota.LimitExceededError{Limit: 100}

	_, err := fx.service.SendChat(context.Background(), fx.userId, &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "hello",
	})

	var limitErr *quota.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 100, limitErr.Limit)
	assert.Empty(t, fx.uow.messages.created, "rejected turns must not be persisted")
}

func TestSendChatRejectsForeignSession(t *testing.T) {
	fx := newChatFixture(nil, nil, nil)

	_, err := fx.service.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		SessionId: fx.session.Id,
		Message:   "hello",
	})

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusForbidden, fiberErr.Code)
	assert.Equal(t, 0, fx.limiter.calls, "quota must not be charged for foreign sessions")
}

func TestGetHistoryRejectsForeignSession(t *testing.T) {
	fx := newChatFixture(nil, nil, nil)

	_, err := fx.service.GetHistory(context.Background(), uuid.New(), fx.session.Id)

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusForbidden, fiberErr.Code)
}
