package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/utils"
	"go.uber.org/zap"
)

const (
	secretFileMode    = 0600
	secretFileVersion = 1
)

type secretFile struct {
	Version int               `json:"version"`
	Secrets map[string]string `json:"secrets"`
}

type fileProvider struct {
	mu   sync.Mutex
	file string
}

// NewFileProvider stores secrets as json in file, readable by the owner only.
// The file is created on the first Put.
func NewFileProvider(file string) IProvider {
	return &fileProvider{file: file}
}

func (p *fileProvider) load() (*secretFile, error) {
	sf := &secretFile{Version: secretFileVersion, Secrets: map[string]string{}}
	raw, err := os.ReadFile(p.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sf, nil
		}
		return nil, daverr.LocalIO(err, "read secret file failed, path:%s", p.file)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return sf, nil
	}
	if err := json.Unmarshal(raw, sf); err != nil {
		return nil, daverr.LocalIO(err, "decode secret file failed, path:%s", p.file)
	}
	if sf.Secrets == nil {
		sf.Secrets = map[string]string{}
	}
	return sf, nil
}

func (p *fileProvider) save(ctx context.Context, sf *secretFile) error {
	raw, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return daverr.LocalIO(err, "encode secret file failed")
	}
	if err := utils.SafeSaveIOToFileMode(p.file, bytes.NewReader(raw), secretFileMode); err != nil {
		logutil.GetLogger(ctx).Error("save secret file failed", zap.String("file", p.file), zap.Error(err))
		return daverr.LocalIO(err, "write secret file failed, path:%s", p.file)
	}
	return nil
}

func (p *fileProvider) Get(ctx context.Context, id string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sf, err := p.load()
	if err != nil {
		return "", err
	}
	v, ok := sf.Secrets[id]
	if !ok {
		return "", errNotFound(id)
	}
	return v, nil
}

func (p *fileProvider) Put(ctx context.Context, id string, secret string) error {
	if err := validatePut(id, secret); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sf, err := p.load()
	if err != nil {
		return err
	}
	sf.Secrets[id] = secret
	return p.save(ctx, sf)
}

func (p *fileProvider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sf, err := p.load()
	if err != nil {
		return err
	}
	if _, ok := sf.Secrets[id]; !ok {
		return errNotFound(id)
	}
	delete(sf.Secrets, id)
	return p.save(ctx, sf)
}
