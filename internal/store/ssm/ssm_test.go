package ssm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/alfredjeanlab/gridvault/internal/store"
)

// fakeAPI is an in-memory parameter store recording the inputs it saw.
type fakeAPI struct {
	params map[string]string

	lastPut *awsssm.PutParameterInput
	lastGet *awsssm.GetParameterInput

	err error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{params: make(map[string]string)}
}

func (f *fakeAPI) GetParameter(_ context.Context, in *awsssm.GetParameterInput, _ ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
	f.lastGet = in
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	return &awsssm.GetParameterOutput{
		Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)},
	}, nil
}

func (f *fakeAPI) PutParameter(_ context.Context, in *awsssm.PutParameterInput, _ ...func(*awsssm.Options)) (*awsssm.PutParameterOutput, error) {
	f.lastPut = in
	if f.err != nil {
		return nil, f.err
	}
	f.params[aws.ToString(in.Name)] = aws.ToString(in.Value)
	return &awsssm.PutParameterOutput{}, nil
}

func (f *fakeAPI) DeleteParameter(_ context.Context, in *awsssm.DeleteParameterInput, _ ...func(*awsssm.Options)) (*awsssm.DeleteParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	name := aws.ToString(in.Name)
	if _, ok := f.params[name]; !ok {
		return nil, &types.ParameterNotFound{}
	}
	delete(f.params, name)
	return &awsssm.DeleteParameterOutput{}, nil
}

func TestPutGetDelete(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, nil)
	ctx := context.Background()

	if err := s.PutParameter(ctx, "/acme/GITHUB_TOKEN", "ghp_secret"); err != nil {
		t.Fatalf("PutParameter: %v", err)
	}

	value, ok, err := s.GetParameter(ctx, "/acme/GITHUB_TOKEN")
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if !ok || value != "ghp_secret" {
		t.Errorf("GetParameter = (%q, %v)", value, ok)
	}

	if err := s.DeleteParameter(ctx, "/acme/GITHUB_TOKEN"); err != nil {
		t.Fatalf("DeleteParameter: %v", err)
	}
	if _, ok, _ := s.GetParameter(ctx, "/acme/GITHUB_TOKEN"); ok {
		t.Error("parameter survived delete")
	}
}

func TestPut_AlwaysSecureString(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, nil)

	if err := s.PutParameter(context.Background(), "/acme/GITHUB_TOKEN", "x"); err != nil {
		t.Fatalf("PutParameter: %v", err)
	}
	if api.lastPut.Type != types.ParameterTypeSecureString {
		t.Errorf("parameter type = %v, want SecureString", api.lastPut.Type)
	}
	if !aws.ToBool(api.lastPut.Overwrite) {
		t.Error("Overwrite not set")
	}
}

func TestGet_RequestsDecryption(t *testing.T) {
	api := newFakeAPI()
	api.params["/acme/GITHUB_TOKEN"] = "x"
	s := NewWithClient(api, nil)

	if _, _, err := s.GetParameter(context.Background(), "/acme/GITHUB_TOKEN"); err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if !aws.ToBool(api.lastGet.WithDecryption) {
		t.Error("WithDecryption not set")
	}
}

func TestGet_Absent(t *testing.T) {
	s := NewWithClient(newFakeAPI(), nil)

	value, ok, err := s.GetParameter(context.Background(), "/acme/MISSING")
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if ok || value != "" {
		t.Errorf("GetParameter = (%q, %v), want (\"\", false)", value, ok)
	}
}

func TestGet_Error(t *testing.T) {
	api := newFakeAPI()
	api.err = errors.New("throttled")
	s := NewWithClient(api, nil)

	if _, _, err := s.GetParameter(context.Background(), "/acme/GITHUB_TOKEN"); err == nil {
		t.Fatal("GetParameter swallowed the error")
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := NewWithClient(newFakeAPI(), nil)

	err := s.DeleteParameter(context.Background(), "/acme/MISSING")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("DeleteParameter err = %v, want ErrNotFound", err)
	}
}

func TestSigningSecretHelpers(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, nil)
	ctx := context.Background()

	if err := s.StoreSigningSecret(ctx, "acme", "slack", "whsec"); err != nil {
		t.Fatalf("StoreSigningSecret: %v", err)
	}
	if _, ok := api.params["/acme/signing-secret/slack"]; !ok {
		t.Errorf("parameter stored under wrong path: %v", api.params)
	}

	value, ok, err := s.GetSigningSecret(ctx, "acme", "slack")
	if err != nil || !ok || value != "whsec" {
		t.Errorf("GetSigningSecret = (%q, %v, %v)", value, ok, err)
	}
}

func TestAPIKeyHelpers(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, nil)
	ctx := context.Background()

	if err := s.StoreAPIKey(ctx, "acme", "akXyZ", "gv_acme_0123456789abcdef0123456789abcdef"); err != nil {
		t.Fatalf("StoreAPIKey: %v", err)
	}
	want := "/acme/api-key/gv_api_akXyZ"
	if _, ok := api.params[want]; !ok {
		t.Fatalf("parameter stored under wrong path: %v", api.params)
	}

	if err := s.DeleteAPIKey(ctx, "acme", "akXyZ"); err != nil {
		t.Fatalf("DeleteAPIKey: %v", err)
	}
	if len(api.params) != 0 {
		t.Errorf("parameters remain: %v", api.params)
	}
}
