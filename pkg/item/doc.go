// Package item provides the concrete data containers that participate in
// augmentation pipelines: images, keypoints, bounding boxes, and class
// labels.
//
// Every kind implements [github.com/morphkit/morph/pkg/augment.Item] with
// explicit copy-with-update semantics: WithData returns a new value with
// the payload replaced and everything else (spatial bounds, class
// vocabularies) carried over unchanged. Geometry-carrying kinds expose
// their spatial extent so transforms can keep an image and its
// annotations aligned.
package item
