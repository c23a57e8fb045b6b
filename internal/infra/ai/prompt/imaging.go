package prompt

// ImagingInstructions tells the model how to read attached images.
// Objective description only; the diagnosis belongs in Assessment.
const ImagingInstructions = `For each image describe: image type and quality (X-ray, CT, MRI...), anatomical region, ` +
	`view or projection (AP, lateral, oblique...), visible structures, notable findings or normal variations, ` +
	`and artifacts or limitations. Do not diagnose from the image alone.`
