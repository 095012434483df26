package codec_test

import (
	"fmt"

	"github.com/haxelion/fbx3d/pkg/codec"
)

func ExampleEnvelopeCodec() {
	c := codec.NewEnvelopeCodec()

	encoded, err := c.Encode(codec.FormatJSON, []byte(`{"nodes":8}`))
	if err != nil {
		panic(err)
	}

	env, err := c.Decode(encoded)
	if err != nil {
		panic(err)
	}
	if err := env.Validate(); err != nil {
		panic(err)
	}

	fmt.Printf("size=%d payload=%s\n", env.Size(), env.Payload)
	// Output: size=28 payload={"nodes":8}
}
