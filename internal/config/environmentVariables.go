package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	NoAuthBypass                    = false //never ship this as true

	//if qdrant is unreachable, ingestion goes to the embedded badger store
	FallbackQdrantToLocalStore = true

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1

	//upper bound for one ingest job, embedding large directories is slow
	IngestJobTimeout = 30 * time.Minute

	//a request waits this long for room in a full job queue, below WriteTimeout
	EnqueueTimeout      = 5 * time.Second
	JobStoreSaveTimeout = 5 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	UploadDir          = "temporary_data"
	MaxUploadSizeBytes = 32 << 20

	//collections
	DefaultCollectionName        = "deepsearcher"
	DefaultCollectionDescription = "By default, it is the collection of all documents."

	//vectorDB
	VectorDBQdrant          = "qdrant"
	VectorDBLocal           = "local"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false            //set for https
	QdrantPoolSize          = 1                //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second //5 * time.Minute for prod maybe- fine tune for performance
	QdrantUpsertBatchSize   = 100
	QdrantMaxSendMsgSize    = 64 << 20
	LocalStorePath          = "" //empty keeps the badger store in memory

	//embeddings
	DefaultEmbeddingModel        = "default"
	GoogleEmbeddingModel         = "gemini-embedding-001"
	DefaultEmbeddingDimension    = 768
	EmbeddingBatchSize           = 256
	GoogleEmbeddingBatchLimit    = 100 //genai rejects bigger EmbedContent batches
	EmbeddingConnectionTimeout   = 60 * time.Second
	JinaBaseURL                  = "https://api.jina.ai/v1"
	SentenceTransformerBaseURL   = "http://localhost:8080/v1"
	BGEM3BaseURL                 = "http://localhost:8081"
	OpenAIBaseURL                = "https://api.openai.com/v1"
	GoogleTaskTypeRetrievalQuery = "RETRIEVAL_QUERY"
	GoogleTaskTypeRetrievalDoc   = "RETRIEVAL_DOCUMENT"

	//splitter
	ChunkSize        = 1500
	ChunkOverlap     = 100
	WiderTextPadding = 300

	//loaders
	LoaderPoolSize        = 4
	PDFPageExtractTimeout = 10 * time.Second
	WebFetchTimeout       = 30 * time.Second
	WebUserAgent          = "deep-searcher/1.0"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore = 0

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
)

const IdleWorkerTimeout = 1 * time.Minute
