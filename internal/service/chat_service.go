package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/pkg/quota"
	"tai-backend/internal/repository/contract"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/pkg/assistant"
	"tai-backend/pkg/embedding"
	"tai-backend/pkg/events"
	"tai-backend/pkg/guardrail"
	pktNats "tai-backend/pkg/nats"
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	courseService     ICourseService
	embeddingProvider embedding.EmbeddingProvider
	engine            *guardrail.Engine
	synthesizer       *assistant.Synthesizer
	limiter           quota.ILimiter
	eventPublisher    *pktNats.Publisher
	retrievalTopK     int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	courseService ICourseService,
	embeddingProvider embedding.EmbeddingProvider,
	engine *guardrail.Engine,
	synthesizer *assistant.Synthesizer,
	limiter quota.ILimiter,
	eventPublisher *pktNats.Publisher,
	retrievalTopK int,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		courseService:     courseService,
		embeddingProvider: embeddingProvider,
		engine:            engine,
		synthesizer:       synthesizer,
		limiter:           limiter,
		eventPublisher:    eventPublisher,
		retrievalTopK:     retrievalTopK,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireCourseAccess(ctx, uow, userId, req.CourseId); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = "New session"
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		CourseId:  req.CourseId,
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, sess := range sessions {
		result[i] = &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			CourseId:  sess.CourseId,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		}
	}
	return result, nil
}

func (s *chatService) GetHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatMessageResponse, len(messages))
	for i, m := range messages {
		result[i] = &dto.ChatMessageResponse{
			Id:        m.Id,
			SessionId: m.ChatSessionId,
			Role:      m.Role,
			Content:   m.Content,
			HintLevel: m.HintLevel,
			Sources:   m.Sources,
			CreatedAt: m.CreatedAt,
		}
	}
	return result, nil
}

// SendChat runs one full turn: quota, persistence of the student message,
// retrieval, the guardrail decision, and either the canned refusal or a
// synthesized reply. The student message is stored before the decision so
// even refused turns leave a complete transcript.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, req.SessionId)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, userId.String()); err != nil {
		return nil, err
	}

	policy, err := s.courseService.GetPolicy(ctx, session.CourseId)
	if err != nil {
		return nil, err
	}

	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          entity.ChatRoleUser,
		Content:       req.Message,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}

	excerpts, err := s.retrieve(ctx, uow, session.CourseId, req.Message)
	if err != nil {
		return nil, err
	}

	hintState, err := s.hintState(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}
	// An explicit "more help please" counts as one more request on the
	// ladder, but only once the session has at least one hint.
	if req.RequestHintIncrease && hintState.NumberOfHintsGiven > 0 {
		hintState.NumberOfHintsGiven++
	}

	decision, err := s.engine.Decide(ctx, guardrail.Input{
		StudentMessage:  req.Message,
		Policy:          policy,
		HintState:       hintState,
		ExcerptHitCount: len(excerpts),
	})
	if err != nil {
		return nil, err
	}

	var content string
	var sources []assistant.Source
	if decision.Action == guardrail.ActionRefuseOutOfScope {
		content = assistant.RefusalMessage
		sources = []assistant.Source{}
	} else {
		result, err := s.synthesizer.Synthesize(ctx, req.Message, excerpts, policy, decision.HintLevel, decision.NotesForAssistant)
		if err != nil {
			return nil, err
		}
		content = result.Content
		sources = result.Sources
	}

	hintLevel := decision.HintLevel
	action := string(decision.Action)
	assistantMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          entity.ChatRoleAssistant,
		Content:       content,
		HintLevel:     &hintLevel,
		Action:        &action,
		Sources:       sources,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewChatTurnCompleted(session.Id.String(), session.CourseId.String(), action, hintLevel)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish chat turn event: %v", err)
		}
	}

	return &dto.SendChatResponse{
		Message: dto.ChatMessageResponse{
			Id:        assistantMsg.Id,
			SessionId: session.Id,
			Role:      assistantMsg.Role,
			Content:   assistantMsg.Content,
			HintLevel: assistantMsg.HintLevel,
			Sources:   sources,
			CreatedAt: assistantMsg.CreatedAt,
		},
		HintLevel: hintLevel,
		Action:    action,
	}, nil
}

// retrieve embeds the question and ranks the course's chunks, resolving
// filenames so citations point at the original uploads.
func (s *chatService) retrieve(ctx context.Context, uow unitofwork.UnitOfWork, courseId uuid.UUID, message string) ([]assistant.Excerpt, error) {
	vectors, err := s.embeddingProvider.GenerateBatch(ctx, []string{message})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		// A broken length contract is an outage, never an empty retrieval:
		// rule 1 would otherwise turn it into an out-of-scope refusal.
		return nil, &embedding.OracleError{
			Provider: "batch",
			Err:      fmt.Errorf("expected 1 vector for 1 text, got %d", len(vectors)),
		}
	}

	scored, err := uow.ChunkRepository().SearchSimilarWithScore(ctx, courseId, vectors[0], s.retrievalTopK)
	if err != nil {
		return nil, err
	}
	// Every result must come from the queried course. A cross-course chunk
	// is aborted on, not filtered: filtering would hide broken scoping.
	for _, sc := range scored {
		if sc.Chunk.CourseId != courseId {
			return nil, &contract.ScopeViolationError{
				QueryCourseId: courseId,
				ChunkId:       sc.Chunk.Id,
				ChunkCourseId: sc.Chunk.CourseId,
			}
		}
	}

	files, err := uow.CourseFileRepository().FindAll(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}
	filenames := make(map[uuid.UUID]string, len(files))
	for _, f := range files {
		filenames[f.Id] = f.Filename
	}

	excerpts := make([]assistant.Excerpt, 0, len(scored))
	for _, sc := range scored {
		excerpts = append(excerpts, assistant.Excerpt{
			Filename:   filenames[sc.Chunk.CourseFileId],
			ChunkIndex: sc.Chunk.ChunkIndex,
			Content:    sc.Chunk.Content,
			Similarity: sc.Similarity,
		})
	}
	return excerpts, nil
}

// hintState folds the session's assistant messages into the ladder state.
func (s *chatService) hintState(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (guardrail.HintState, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByRole{Role: entity.ChatRoleAssistant},
	)
	if err != nil {
		return guardrail.HintState{}, err
	}

	hintLevels := make([]*int, len(messages))
	for i, m := range messages {
		hintLevels[i] = m.HintLevel
	}
	return guardrail.ComputeHintState(hintLevels), nil
}

func (s *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	if session.UserId != userId {
		return nil, fiber.NewError(fiber.StatusForbidden, "not your session")
	}
	return session, nil
}

// requireCourseAccess admits course members and the owning instructor.
func (s *chatService) requireCourseAccess(ctx context.Context, uow unitofwork.UnitOfWork, userId, courseId uuid.UUID) error {
	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return err
	}
	if course == nil {
		return fiber.NewError(fiber.StatusNotFound, "course not found")
	}
	if course.InstructorId == userId {
		return nil
	}

	membership, err := uow.UserCourseRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByCourseID{CourseID: courseId},
	)
	if err != nil {
		return err
	}
	if membership == nil {
		return fiber.NewError(fiber.StatusForbidden, "join the course before chatting")
	}
	return nil
}
