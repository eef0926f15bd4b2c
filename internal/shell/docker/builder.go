package docker

import (
	"context"
	"io"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/archive"
)

// =============================================================================
// Image Build
// =============================================================================

// BuildImage builds an image from a local build context directory.
// The context is tarred and streamed to the daemon; the response body is
// drained fully, since the daemon only finishes the build once the stream
// is consumed.
func (d *DockerClient) BuildImage(opts BuildOptions) error {
	ctx := context.Background()

	dockerfile := opts.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	tar, err := archive.TarWithOptions(opts.ContextDir, &archive.TarOptions{})
	if err != nil {
		return NewDockerError("BuildImage", "image", opts.Tag, err.Error(), ErrImageBuildFailed)
	}
	defer tar.Close()

	var buildArgs map[string]*string
	if len(opts.Args) > 0 {
		buildArgs = make(map[string]*string, len(opts.Args))
		for k, v := range opts.Args {
			value := v
			buildArgs[k] = &value
		}
	}

	resp, err := d.cli.ImageBuild(ctx, tar, build.ImageBuildOptions{
		Tags:       []string{opts.Tag},
		Dockerfile: dockerfile,
		BuildArgs:  buildArgs,
		Remove:     true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot locate specified Dockerfile") {
			return NewDockerError("BuildImage", "image", opts.Tag, "dockerfile not found in context", ErrImageBuildFailed)
		}
		return NewDockerError("BuildImage", "image", opts.Tag, err.Error(), ErrImageBuildFailed)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return NewDockerError("BuildImage", "image", opts.Tag, err.Error(), ErrImageBuildFailed)
	}

	return nil
}
