package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/dynamic/grpcdynamic"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/token"
)

// GRPC parses modules by calling a remote ParserService over gRPC
// server reflection, rather than linking a parser into this process.
// It is the one place in the core that performs network I/O, and it
// is confined to the loader boundary: the resolver calling it sees
// only the Loader interface.
type GRPC struct {
	Address      string
	UsePlaintext bool

	conn *grpc.ClientConn
}

// NewGRPC builds a loader dialing address lazily on first Load.
func NewGRPC(address string, usePlaintext bool) *GRPC {
	return &GRPC{Address: address, UsePlaintext: usePlaintext}
}

func (g *GRPC) getConnection() (*grpc.ClientConn, error) {
	if g.conn != nil {
		return g.conn, nil
	}
	var opts []grpc.DialOption
	if g.UsePlaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(g.Address, opts...)
	if err != nil {
		return nil, err
	}
	g.conn = conn
	return conn, nil
}

// Load resolves `avalon.ParserService/Parse` via server reflection,
// invokes it with a JSON request carrying fqn and search paths, and
// decodes the JSON response into a *ast.Program.
func (g *GRPC) Load(ctx context.Context, fqn token.FQN, searchPaths []string) (*ast.Program, error) {
	conn, err := g.getConnection()
	if err != nil {
		return nil, fmt.Errorf("loader: dialing %s: %w", g.Address, err)
	}

	refClient := grpcreflect.NewClientAuto(ctx, conn)
	defer refClient.Reset()

	svcDesc, err := refClient.ResolveService("avalon.ParserService")
	if err != nil {
		return nil, fmt.Errorf("loader: resolving avalon.ParserService: %w", err)
	}
	var mtdDesc *desc.MethodDescriptor = svcDesc.FindMethodByName("Parse")
	if mtdDesc == nil {
		return nil, fmt.Errorf("loader: method Parse not found in service avalon.ParserService")
	}

	reqJSON, err := json.Marshal(wireRequest{Path: fqn.Path, Name: fqn.Name, SearchPaths: searchPaths})
	if err != nil {
		return nil, fmt.Errorf("loader: encoding request: %w", err)
	}

	reqMsg := dynamic.NewMessage(mtdDesc.GetInputType())
	if err := reqMsg.UnmarshalJSON(reqJSON); err != nil {
		return nil, fmt.Errorf("loader: request does not match %s's input schema: %w", mtdDesc.GetFullyQualifiedName(), err)
	}

	stub := grpcdynamic.NewStub(conn)
	respMsg, err := stub.InvokeRpc(ctx, mtdDesc, reqMsg)
	if err != nil {
		return nil, fmt.Errorf("loader: Parse RPC failed for %s: %w", fqn.Name, err)
	}

	respJSON, err := respMsg.(*dynamic.Message).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("loader: decoding response: %w", err)
	}

	var wp wireProgram
	if err := json.Unmarshal(respJSON, &wp); err != nil {
		return nil, fmt.Errorf("loader: response did not match the expected program schema: %w", err)
	}
	if wp.NotFound {
		return nil, &ErrNotFound{FQN: fqn}
	}
	return wp.toProgram()
}

type wireRequest struct {
	Path        string   `json:"fqn_path"`
	Name        string   `json:"fqn_name"`
	SearchPaths []string `json:"search_paths"`
}

type wireProgram struct {
	NotFound   bool            `json:"not_found"`
	FQNPath    string          `json:"fqn_path"`
	FQNName    string          `json:"fqn_name"`
	IsBuiltin  bool            `json:"is_builtin"`
	Namespaces []wireNamespace `json:"namespaces"`
}

type wireNamespace struct {
	Name      string         `json:"name"`
	Types     []wireType     `json:"types"`
	Functions []wireFunction `json:"functions"`
	Variables []wireVariable `json:"variables"`
}

type wireType struct {
	Name   string   `json:"name"`
	Public bool     `json:"public"`
	Params []string `json:"params"`
}

type wireParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireFunction struct {
	Name   string      `json:"name"`
	Public bool        `json:"public"`
	Params []wireParam `json:"params"`
	Return string      `json:"return"`
}

type wireVariable struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
	Type   string `json:"type"`
}

// toProgram builds the header-only program the wire schema describes:
// every declared type instance is left abstract (unresolved), since
// resolving builders against a scope is the type-instance checker's
// job, not the loader's.
func (wp wireProgram) toProgram() (*ast.Program, error) {
	fqn := token.NewFQN(wp.FQNPath, wp.FQNName)
	prog := ast.NewProgram(fqn, wp.IsBuiltin)

	for _, wns := range wp.Namespaces {
		prog.Scope.AddNamespace(wns.Name)
		for _, wt := range wns.Types {
			params := make([]token.Token, len(wt.Params))
			for i, p := range wt.Params {
				params[i] = token.New(token.KindIdentifier, p, 0, 0, fqn.Path)
			}
			t := ast.NewType(wt.Name, token.New(token.KindTypeName, wt.Name, 0, 0, fqn.Path), fqn, wns.Name, params)
			t.Public = wt.Public
			if err := prog.AddType(wns.Name, t); err != nil {
				return nil, fmt.Errorf("loader: decoding %s: %w", fqn.Name, err)
			}
		}
		for _, wf := range wns.Functions {
			fn := &ast.Function{
				Name:      wf.Name,
				Token:     token.New(token.KindIdentifier, wf.Name, 0, 0, fqn.Path),
				FQN:       fqn,
				Namespace: wns.Name,
				Public:    wf.Public,
				Return:    abstractInstance(wf.Return),
			}
			for _, wparam := range wf.Params {
				fn.Params = append(fn.Params, ast.Parameter{
					Name:     token.New(token.KindIdentifier, wparam.Name, 0, 0, fqn.Path),
					Declared: abstractInstance(wparam.Type),
				})
			}
			if err := prog.AddFunction(wns.Name, fn); err != nil {
				return nil, fmt.Errorf("loader: decoding %s: %w", fqn.Name, err)
			}
		}
		for _, wv := range wns.Variables {
			v := &ast.Variable{
				Name:      wv.Name,
				Token:     token.New(token.KindIdentifier, wv.Name, 0, 0, fqn.Path),
				FQN:       fqn,
				Namespace: wns.Name,
				Public:    wv.Public,
				Declared:  abstractInstance(wv.Type),
			}
			if err := prog.AddVariable(wns.Name, v); err != nil {
				return nil, fmt.Errorf("loader: decoding %s: %w", fqn.Name, err)
			}
		}
	}
	return prog, nil
}

func abstractInstance(name string) ast.TypeInstance {
	return ast.TypeInstance{Name: name, Token: token.New(token.KindIdentifier, name, 0, 0, ""), Namespace: "*"}
}
