// Package adago provides training-loop support for unsupervised deep
// domain adaptation: learning from labeled source samples and unlabeled
// target samples under distribution shift.
//
// Two hooks plug into a generic minibatch training loop:
//
//   - SourceCentroids runs at epoch begin. It collects features for the
//     full training set, computes one centroid per source class from
//     normalized source features, and uses those centroids to seed a
//     spherical k-means clustering of the target features. The fitted
//     clusterer is published into the shared AdaptState.
//
//   - BankUpdate runs at batch end. It recomputes normalized features and
//     sharpened softmax outputs for the target rows of the batch and
//     blends them into the persistent MemoryBank with an exponential
//     moving average, touching only the rows present in the batch.
//
// A downstream pseudo-labeling criterion reads both: the clusterer for
// target cluster assignments and the bank for per-sample memory rows.
//
// Minimal wiring:
//
//	bank, _ := adago.NewMemoryBank(train.TargetCount(), featureDim, numClasses)
//	state := adago.NewAdaptState(bank)
//
//	centroids, _ := adago.NewSourceCentroids(state, extractFeatures)
//	update, _ := adago.NewBankUpdate(state, forward)
//	hooks := adago.Hooks{centroids, update}
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    if err := hooks.EpochBegin(ctx, train); err != nil { ... }
//	    for _, batch := range batches {
//	        trainStep(batch)
//	        if err := hooks.BatchEnd(ctx, batch); err != nil { ... }
//	    }
//	}
//
// The feature-extraction and forward functions are collaborator contracts:
// they must run gradient-free / in evaluation mode, since both hooks are
// pure feature-collection passes that must not perturb optimizer state.
package adago
