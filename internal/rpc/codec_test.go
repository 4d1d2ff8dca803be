// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/MKhiriev/nutrilife-sync/models"
)

func TestJSONCodec_Registered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, CodecName, codec.Name())
}

func TestJSONCodec_Messages(t *testing.T) {
	codec := jsonCodec{}

	in := &PutSnapshotRequest{Dataset: models.NewDataset()}
	data, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dataset":{"profile":null`)

	var out PutSnapshotRequest
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in.Dataset.Schedule, out.Dataset.Schedule)

	assert.Error(t, codec.Unmarshal([]byte("{"), &out))
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "nutrilife.v1.SnapshotService", SnapshotServiceDesc.ServiceName)
	assert.Len(t, SnapshotServiceDesc.Methods, 4)
	assert.Equal(t, "/nutrilife.v1.SnapshotService/PutSnapshot", PutSnapshotMethod)
}
