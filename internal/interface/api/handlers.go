package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/mo"

	"github.com/jinford/docrag/internal/core/answer"
	"github.com/jinford/docrag/internal/core/extract"
	"github.com/jinford/docrag/internal/core/ingestion"
	"github.com/jinford/docrag/internal/core/retrieval"
)

// uploadResponse はアップロードAPIのレスポンス
type uploadResponse struct {
	SourceDocument string `json:"sourceDocument"`
	ChunksIndexed  int    `json:"chunksIndexed"`
}

// queryRequest は質問APIのリクエスト
// scoreThreshold はポインタで受け、明示的な 0（足切りなし）と未指定を区別する
type queryRequest struct {
	Question       string   `json:"question"`
	TopK           int      `json:"topK,omitempty"`
	ScoreThreshold *float64 `json:"scoreThreshold,omitempty"`
}

// deleteResponse は削除APIのレスポンス
type deleteResponse struct {
	SourceDocument string `json:"sourceDocument"`
	ChunksDeleted  int    `json:"chunksDeleted"`
}

// statsResponse は統計APIのレスポンス
type statsResponse struct {
	Documents int   `json:"documents"`
	Chunks    int64 `json:"chunks"`
}

// errorResponse はエラーレスポンスの共通形式
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := s.container.IngestionService.Ingest(r.Context(), ingestion.IngestParams{
		FileName: header.Filename,
		Data:     data,
	})
	if err != nil {
		s.writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		SourceDocument: result.SourceDocument,
		ChunksIndexed:  result.ChunkCount,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	params := retrieval.RetrieveParams{Question: req.Question}
	if req.TopK > 0 {
		params.TopK = mo.Some(req.TopK)
	}
	if req.ScoreThreshold != nil {
		params.ScoreThreshold = mo.Some(*req.ScoreThreshold)
	}

	contexts, err := s.container.RetrievalService.Retrieve(r.Context(), params)
	if err != nil {
		s.writeRetrieveError(w, err)
		return
	}

	result, err := s.container.AnswerService.Answer(r.Context(), req.Question, contexts)
	if err != nil {
		if errors.Is(err, answer.ErrGenerationUnavailable) {
			writeError(w, http.StatusBadGateway, "answer generation is temporarily unavailable")
			return
		}
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := s.container.RegistryService.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	source := r.PathValue("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	deleted, err := s.container.IngestionService.Delete(r.Context(), source)
	if err != nil {
		if errors.Is(err, ingestion.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		SourceDocument: source,
		ChunksDeleted:  deleted,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.container.RegistryService.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}

	chunks, err := s.container.RetrievalService.TotalPoints(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Documents: len(records),
		Chunks:    chunks,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.container.Database().Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database is unreachable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeIngestError は取り込み系エラーをHTTPステータスにマップする
func (s *Server) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, extract.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ingestion.ErrPartialIngestion):
		writeError(w, http.StatusBadGateway, "ingestion failed, index was not updated")
	default:
		s.internalError(w, err)
	}
}

// writeRetrieveError は検索系エラーをHTTPステータスにマップする
func (s *Server) writeRetrieveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingestion.ErrEmbeddingUnavailable),
		errors.Is(err, ingestion.ErrEmbeddingTimeout):
		writeError(w, http.StatusBadGateway, "embedding service is temporarily unavailable")
	default:
		s.internalError(w, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("internal server error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
