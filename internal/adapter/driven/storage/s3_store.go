package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
)

// ObjectPutter is the subset of *s3.Client used to publish reports.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ReportStore envia relatórios exportados para um bucket S3.
type S3ReportStore struct {
	client ObjectPutter
}

// NewS3ReportStore carrega a configuração padrão da AWS (variáveis de ambiente,
// arquivos compartilhados, perfil) e cria o cliente S3.
func NewS3ReportStore(ctx context.Context, region string) (repository.ReportStore, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3ReportStoreWithClient(s3.NewFromConfig(cfg)), nil
}

// NewS3ReportStoreWithClient usa um cliente já configurado.
func NewS3ReportStoreWithClient(client ObjectPutter) *S3ReportStore {
	return &S3ReportStore{client: client}
}

// Upload grava localPath em destination ("s3://bucket/prefixo") usando o nome
// base do arquivo como chave e retorna a URI do objeto.
func (s *S3ReportStore) Upload(ctx context.Context, localPath string, destination string) (string, error) {
	bucket, prefix, err := parseS3Destination(destination)
	if err != nil {
		return "", err
	}
	key := path.Join(prefix, filepath.Base(localPath))

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening report %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", filepath.Base(localPath), bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

// parseS3Destination extrai bucket e prefixo de "s3://bucket/prefixo". O prefixo pode ser vazio.
func parseS3Destination(destination string) (bucket, prefix string, err error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 destination %q: %w", destination, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, destination)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("empty bucket in S3 destination %q", destination)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
